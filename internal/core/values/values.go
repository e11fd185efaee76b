// Package values builds the Helm values documents for stack releases. It is
// pure construction: callers render the result and hand it to helm.
package values

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
)

// =============================================================================
// Service Values
// =============================================================================

// ForService builds the values document for one service release. The mode is
// exposed twice: as a chart value the templates switch on, and as a pod
// annotation so the running cluster records which flavor was deployed.
//
// Real services that depend on the shared database receive its connection
// settings; the chart maps them onto the DB_* environment the service reads.
// Mocks get no database block at all.
func ForService(svc catalog.Service, mode domain.Mode, db catalog.Database) map[string]any {
	vals := map[string]any{
		"mode": string(mode),
		"podAnnotations": map[string]any{
			domain.ModeAnnotation: string(mode),
		},
		"service": map[string]any{
			"port": svc.Port,
		},
	}

	if mode == domain.ModeReal && svc.NeedsDatabase {
		vals["database"] = map[string]any{
			"host":     db.Host,
			"port":     db.Port,
			"name":     db.Name,
			"user":     db.User,
			"password": db.Password,
		}
	}

	return vals
}

// =============================================================================
// Database Values
// =============================================================================

// ForDatabase builds the values document for the shared Postgres release.
// The seed flag passes straight through: loading sample rows is the chart's
// job, the harness only requests it.
func ForDatabase(db catalog.Database, seed bool) map[string]any {
	return map[string]any{
		"auth": map[string]any{
			"database": db.Name,
			"username": db.User,
			"password": db.Password,
		},
		"service": map[string]any{
			"port": db.Port,
		},
		"seed": map[string]any{
			"enabled": seed,
		},
	}
}

// =============================================================================
// Rendering
// =============================================================================

// Render serializes a values document to YAML.
func Render(vals map[string]any) ([]byte, error) {
	out, err := yaml.Marshal(vals)
	if err != nil {
		return nil, fmt.Errorf("failed to render values: %w", err)
	}
	return out, nil
}
