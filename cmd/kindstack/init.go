package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
	"github.com/lukecassidy/kind-stack-dev/internal/core/compose"
)

const initFileName = "kindstack.yaml"

var (
	initFromCompose string
	initForce       bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a kindstack.yaml config file",
	Long: `Write a starter kindstack.yaml in the current directory. With
--from-compose the service catalog is derived from an existing docker compose
file instead of the built-in defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(initFileName); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", initFileName)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", initFileName, err)
		}

		cat := cfg.Catalog()
		if initFromCompose != "" {
			content, err := os.ReadFile(initFromCompose)
			if err != nil {
				return fmt.Errorf("failed to read compose file: %w", err)
			}

			project, err := compose.Parse(string(content))
			if err != nil {
				return err
			}

			cat, err = compose.ToCatalog(project)
			if err != nil {
				return err
			}
		}

		data, err := yaml.Marshal(configFile(cfg, cat))
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}

		if err := os.WriteFile(initFileName, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", initFileName, err)
		}

		if initFromCompose != "" {
			fmt.Printf("Wrote %s with %d service(s) from %s\n", initFileName, len(cat.Services), initFromCompose)
		} else {
			fmt.Printf("Wrote %s with the default catalog\n", initFileName)
		}
		fmt.Println("Next: kindstack cluster create && kindstack up")

		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initFromCompose, "from-compose", "", "derive the catalog from a docker compose file")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

// =============================================================================
// Config File Rendering
// =============================================================================

// File-scoped structs keep the YAML sections in a readable order; marshalling
// maps would sort keys alphabetically.

type fileService struct {
	Name          string `yaml:"name"`
	Chart         string `yaml:"chart"`
	Port          int    `yaml:"port"`
	HealthPath    string `yaml:"health_path"`
	Workload      string `yaml:"workload,omitempty"`
	NeedsDatabase bool   `yaml:"needs_database,omitempty"`
}

type fileCluster struct {
	Name string `yaml:"name"`
}

type fileStack struct {
	Namespace     string        `yaml:"namespace"`
	ReleasePrefix string        `yaml:"release_prefix"`
	Services      []fileService `yaml:"services"`
}

type fileDatabase struct {
	Chart    string `yaml:"chart"`
	Workload string `yaml:"workload"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type fileHistory struct {
	Path string `yaml:"path"`
}

type fileServe struct {
	Addr string `yaml:"addr"`
}

type fileLog struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type fileConfig struct {
	Cluster  fileCluster  `yaml:"cluster"`
	Stack    fileStack    `yaml:"stack"`
	Database fileDatabase `yaml:"database"`
	History  fileHistory  `yaml:"history"`
	Serve    fileServe    `yaml:"serve"`
	Log      fileLog      `yaml:"log"`
}

func configFile(c *Config, cat catalog.Catalog) fileConfig {
	services := make([]fileService, 0, len(cat.Services))
	for _, svc := range cat.Services {
		workload := svc.Workload
		if workload == svc.Name {
			workload = ""
		}
		services = append(services, fileService{
			Name:          svc.Name,
			Chart:         svc.Chart,
			Port:          svc.Port,
			HealthPath:    svc.HealthPath,
			Workload:      workload,
			NeedsDatabase: svc.NeedsDatabase,
		})
	}

	return fileConfig{
		Cluster: fileCluster{Name: c.Cluster.Name},
		Stack: fileStack{
			Namespace:     c.Stack.Namespace,
			ReleasePrefix: c.Stack.ReleasePrefix,
			Services:      services,
		},
		Database: fileDatabase{
			Chart:    cat.Database.Chart,
			Workload: cat.Database.Workload,
			Host:     cat.Database.Host,
			Port:     cat.Database.Port,
			Name:     cat.Database.Name,
			User:     cat.Database.User,
			Password: cat.Database.Password,
		},
		History: fileHistory{Path: c.History.Path},
		Serve:   fileServe{Addr: c.Serve.Addr},
		Log:     fileLog{Level: c.Log.Level, Format: c.Log.Format},
	}
}
