// Package catalog defines the fixed set of stack services the harness knows
// how to deploy. The catalog is data, not behavior: resolution and
// orchestration consume it but never mutate it.
package catalog

// =============================================================================
// Service
// =============================================================================

// Service describes one deployable stack service.
type Service struct {
	// Name is the identifier used on the command line and in release names.
	Name string `json:"name"`

	// Chart is the path of the service's Helm chart, relative to the chart
	// root unless absolute.
	Chart string `json:"chart"`

	// Port is the local port the service is reachable on during development
	// (via kind port mappings or kubectl port-forward).
	Port int `json:"port"`

	// HealthPath is the HTTP path probed by connectivity checks.
	HealthPath string `json:"health_path"`

	// Workload is the name of the Deployment the chart creates. Defaults to
	// Name when empty.
	Workload string `json:"workload,omitempty"`

	// NeedsDatabase marks services that read from the shared database when
	// deployed for real. Mocks never touch it.
	NeedsDatabase bool `json:"needs_database,omitempty"`
}

// WorkloadName returns the Deployment name for the service.
func (s Service) WorkloadName() string {
	if s.Workload != "" {
		return s.Workload
	}
	return s.Name
}

// =============================================================================
// Database
// =============================================================================

// Database describes the shared Postgres instance backing real services.
// Connection values mirror the DB_* environment the api service reads.
type Database struct {
	Chart    string `json:"chart"`
	Workload string `json:"workload"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Name     string `json:"name"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// =============================================================================
// Catalog
// =============================================================================

// Catalog is the ordered set of known services plus the shared database.
// Order is deployment order.
type Catalog struct {
	Services []Service `json:"services"`
	Database Database  `json:"database"`
}

// Default returns the stock three-service catalog.
func Default() Catalog {
	return Catalog{
		Services: []Service{
			{Name: "frontend", Chart: "charts/frontend", Port: 3000, HealthPath: "/"},
			{Name: "backend", Chart: "charts/backend", Port: 8081, HealthPath: "/health"},
			{Name: "api", Chart: "charts/api", Port: 8080, HealthPath: "/health", NeedsDatabase: true},
		},
		Database: DefaultDatabase(),
	}
}

// DefaultDatabase returns the stock database settings.
func DefaultDatabase() Database {
	return Database{
		Chart:    "charts/postgres",
		Workload: "postgres",
		Host:     "postgres",
		Port:     5432,
		Name:     "appdb",
		User:     "appuser",
		Password: "devpassword",
	}
}

// Names returns service names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c.Services))
	for _, s := range c.Services {
		names = append(names, s.Name)
	}
	return names
}

// Lookup finds a service by name.
func (c Catalog) Lookup(name string) (Service, bool) {
	for _, s := range c.Services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

// Contains reports whether name is a catalog service.
func (c Catalog) Contains(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}
