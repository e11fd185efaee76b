// Package resolver decides, for one invocation of the harness, which catalog
// services deploy for real, which deploy as mocks, and whether the shared
// database is provisioned at all. It is pure: decisions are recomputed from
// the inputs on every invocation and nothing is remembered between runs.
package resolver

import (
	"sort"
	"strings"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
)

// =============================================================================
// Real Service Set
// =============================================================================

// ServiceSet is a set of service names requested as real.
type ServiceSet map[string]struct{}

// ParseRealServices builds a ServiceSet from a comma-delimited string.
// Tokens are trimmed, empty tokens are dropped, and duplicates collapse.
// The empty string yields the empty set. Names are not validated here:
// membership is decided by exact string comparison later, so an unknown
// name simply never matches anything.
func ParseRealServices(raw string) ServiceSet {
	set := make(ServiceSet)
	for _, token := range strings.Split(raw, ",") {
		name := strings.TrimSpace(token)
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

// Has reports whether name is in the set.
func (s ServiceSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s ServiceSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Canonical returns the set as a sorted comma-joined string. Parsing the
// canonical form reproduces the same set.
func (s ServiceSet) Canonical() string {
	return strings.Join(s.Sorted(), ",")
}

// =============================================================================
// Mode Decisions
// =============================================================================

// ResolveMode decides the deployment mode for a single service: real when the
// name is in the requested set, mock otherwise. Comparison is exact; there is
// no normalization and no failure path.
func ResolveMode(service string, real ServiceSet) domain.Mode {
	if real.Has(service) {
		return domain.ModeReal
	}
	return domain.ModeMock
}

// ResolveInfrastructure decides whether the shared database is provisioned.
// The database exists for exactly two reasons: the api service runs for real,
// or seed data was requested. It is never requested directly.
func ResolveInfrastructure(apiMode domain.Mode, seed bool) bool {
	return apiMode == domain.ModeReal || seed
}

// =============================================================================
// Plan
// =============================================================================

// Input is everything the resolver consumes. It is assembled once by the CLI
// and passed by value; the resolver reads nothing else.
type Input struct {
	RealServices ServiceSet
	Seed         bool
}

// StepKind distinguishes plan steps.
type StepKind string

const (
	StepDatabase StepKind = "database"
	StepService  StepKind = "service"
)

// Step is one ordered provisioning action.
type Step struct {
	Kind    StepKind
	Service string      // catalog service name; empty for the database step
	Mode    domain.Mode // service steps only
}

// Plan is the complete, ordered deployment decision for one run. Modes covers
// every catalog service: consumers range over the catalog, never over the
// request, so a service can never be silently skipped.
type Plan struct {
	Modes    map[string]domain.Mode
	Database bool
	Seed     bool
	Steps    []Step
	Unknown  []string
}

// RealNames returns the catalog services resolved to real, in catalog order.
func (p Plan) RealNames() []string {
	var names []string
	for _, step := range p.Steps {
		if step.Kind == StepService && step.Mode == domain.ModeReal {
			names = append(names, step.Service)
		}
	}
	return names
}

// Resolve computes the deployment plan for a catalog and input. The database
// step, when present, is always first: dependent services must find their
// backing store provisioned before their own install is issued. Service steps
// follow in catalog order. Requested names that match no catalog service are
// reported in Unknown; they affect nothing else.
func Resolve(cat catalog.Catalog, in Input) Plan {
	plan := Plan{
		Modes: make(map[string]domain.Mode, len(cat.Services)),
		Seed:  in.Seed,
	}

	database := in.Seed
	for _, svc := range cat.Services {
		mode := ResolveMode(svc.Name, in.RealServices)
		plan.Modes[svc.Name] = mode
		if svc.NeedsDatabase && mode == domain.ModeReal {
			database = true
		}
	}
	plan.Database = database

	if plan.Database {
		plan.Steps = append(plan.Steps, Step{Kind: StepDatabase})
	}
	for _, svc := range cat.Services {
		plan.Steps = append(plan.Steps, Step{
			Kind:    StepService,
			Service: svc.Name,
			Mode:    plan.Modes[svc.Name],
		})
	}

	for _, name := range in.RealServices.Sorted() {
		if !cat.Contains(name) {
			plan.Unknown = append(plan.Unknown, name)
		}
	}

	return plan
}
