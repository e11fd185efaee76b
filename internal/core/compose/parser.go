package compose

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
)

// =============================================================================
// Parsing
// =============================================================================

// Parse parses Docker Compose YAML into a compose-go project.
func Parse(yamlContent string) (*types.Project, error) {
	if strings.TrimSpace(yamlContent) == "" {
		return nil, ErrEmptyInput
	}

	// compose-go wants the raw bytes and the pre-parsed document
	var dict map[string]interface{}
	if err := yaml.Unmarshal([]byte(yamlContent), &dict); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	if dict == nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: []byte(yamlContent),
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("kindstack-import", false)
		opts.SkipValidation = false
		opts.SkipInterpolation = false
		// In-memory content, nothing to resolve on disk
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		return nil, NewParseError("", err.Error(), ErrInvalidYAML)
	}

	if len(project.Services) == 0 {
		return nil, ErrNoServices
	}

	return project, nil
}

// =============================================================================
// Catalog Conversion
// =============================================================================

// databaseImage identifies the shared database service inside a compose
// project. Anything running a postgres image is treated as the database, not
// as a deployable stack service.
func databaseImage(image string) bool {
	name := image
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.HasPrefix(name, "postgres")
}

// ToCatalog converts a compose project into a harness catalog. The database
// service (postgres image) is folded into the catalog's database settings;
// every other service becomes a catalog entry. Services that depend on the
// database are marked as needing it. Entries are ordered so that
// depended-upon services come first.
func ToCatalog(project *types.Project) (catalog.Catalog, error) {
	cat := catalog.Catalog{Database: catalog.DefaultDatabase()}

	var dbName string
	for _, svc := range project.Services {
		if databaseImage(svc.Image) {
			dbName = svc.Name
			applyDatabaseService(&cat.Database, svc)
			break
		}
	}

	var services []catalog.Service
	dependsOn := make(map[string][]string)
	for _, svc := range project.Services {
		if svc.Name == dbName {
			continue
		}

		entry, err := convertService(svc, dbName)
		if err != nil {
			return catalog.Catalog{}, err
		}
		services = append(services, entry)

		for dep := range svc.DependsOn {
			if dep != dbName {
				dependsOn[svc.Name] = append(dependsOn[svc.Name], dep)
			}
		}
	}

	if len(services) == 0 {
		return catalog.Catalog{}, ErrNoServices
	}

	cat.Services = sortByDependency(services, dependsOn)
	return cat, nil
}

// applyDatabaseService folds a compose postgres service into database settings.
func applyDatabaseService(db *catalog.Database, svc types.ServiceConfig) {
	db.Host = svc.Name
	db.Workload = svc.Name

	env := func(key string) string {
		if v, ok := svc.Environment[key]; ok && v != nil {
			return *v
		}
		return ""
	}
	if v := env("POSTGRES_DB"); v != "" {
		db.Name = v
	}
	if v := env("POSTGRES_USER"); v != "" {
		db.User = v
	}
	if v := env("POSTGRES_PASSWORD"); v != "" {
		db.Password = v
	}
}

// convertService converts one compose service into a catalog entry.
func convertService(svc types.ServiceConfig, dbName string) (catalog.Service, error) {
	entry := catalog.Service{
		Name:       svc.Name,
		Chart:      "charts/" + svc.Name,
		HealthPath: "/health",
	}

	for _, p := range svc.Ports {
		if p.Published == "" {
			continue
		}
		published, err := strconv.Atoi(p.Published)
		if err != nil {
			continue
		}
		entry.Port = published
		break
	}
	if entry.Port == 0 {
		return catalog.Service{}, NewParseError("services."+svc.Name, "no published port to probe", ErrNoPublishedPort)
	}

	if dbName != "" {
		if _, ok := svc.DependsOn[dbName]; ok {
			entry.NeedsDatabase = true
		}
	}

	return entry, nil
}

// =============================================================================
// Dependency Ordering
// =============================================================================

// sortByDependency orders services with Kahn's algorithm so that
// depended-upon services come first. Ties break lexically to keep the
// generated configuration stable across runs. Cycles cannot occur in a loaded
// compose project; as a fallback any leftover services are appended.
func sortByDependency(services []catalog.Service, dependsOn map[string][]string) []catalog.Service {
	if len(services) == 0 {
		return services
	}

	serviceMap := make(map[string]catalog.Service)
	inDegree := make(map[string]int)
	dependents := make(map[string][]string)

	for _, svc := range services {
		serviceMap[svc.Name] = svc
		inDegree[svc.Name] = 0
	}
	for name, deps := range dependsOn {
		for _, dep := range deps {
			if _, ok := serviceMap[dep]; !ok {
				continue
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []catalog.Service
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		result = append(result, serviceMap[name])

		next := append([]string(nil), dependents[name]...)
		sort.Strings(next)
		for _, dep := range next {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(result) < len(services) {
		for _, svc := range services {
			found := false
			for _, r := range result {
				if r.Name == svc.Name {
					found = true
					break
				}
			}
			if !found {
				result = append(result, svc)
			}
		}
	}

	return result
}
