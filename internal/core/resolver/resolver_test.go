package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
)

// =============================================================================
// Parsing Tests
// =============================================================================

func TestParseRealServices(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single name", "api", []string{"api"}},
		{"multiple names", "frontend,api", []string{"api", "frontend"}},
		{"whitespace trimmed", " frontend , api ", []string{"api", "frontend"}},
		{"duplicates collapse", "api,api", []string{"api"}},
		{"empty string", "", nil},
		{"only delimiters", ",,", nil},
		{"trailing delimiter", "backend,", []string{"backend"}},
		{"unknown names kept", "api,bogus", []string{"api", "bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := ParseRealServices(tt.raw)
			if tt.want == nil {
				assert.Empty(t, set)
			} else {
				assert.Equal(t, tt.want, set.Sorted())
			}
		})
	}
}

func TestParseRealServices_CanonicalRoundTrip(t *testing.T) {
	// Re-parsing the canonical form of any parsed set yields the same set.
	for _, raw := range []string{"", "api", " api ,frontend,api,", "backend,frontend,api", "x,,y"} {
		set := ParseRealServices(raw)
		again := ParseRealServices(set.Canonical())
		assert.Equal(t, set, again, "raw input %q", raw)
	}
}

func TestServiceSet_Has(t *testing.T) {
	set := ParseRealServices("api,frontend")

	assert.True(t, set.Has("api"))
	assert.True(t, set.Has("frontend"))
	assert.False(t, set.Has("backend"))
	assert.False(t, set.Has("API")) // exact comparison, no normalization
}

// =============================================================================
// Mode Decision Tests
// =============================================================================

func TestResolveMode(t *testing.T) {
	real := ParseRealServices("api,frontend")

	assert.Equal(t, domain.ModeReal, ResolveMode("api", real))
	assert.Equal(t, domain.ModeReal, ResolveMode("frontend", real))
	assert.Equal(t, domain.ModeMock, ResolveMode("backend", real))
}

func TestResolveMode_EmptySet(t *testing.T) {
	real := ParseRealServices("")

	for _, name := range []string{"frontend", "backend", "api"} {
		assert.Equal(t, domain.ModeMock, ResolveMode(name, real))
	}
}

// =============================================================================
// Infrastructure Decision Tests
// =============================================================================

func TestResolveInfrastructure(t *testing.T) {
	tests := []struct {
		name    string
		apiMode domain.Mode
		seed    bool
		want    bool
	}{
		{"api real without seed", domain.ModeReal, false, true},
		{"api real with seed", domain.ModeReal, true, true},
		{"api mock with seed", domain.ModeMock, true, true},
		{"api mock without seed", domain.ModeMock, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveInfrastructure(tt.apiMode, tt.seed))
		})
	}
}

// =============================================================================
// Plan Tests
// =============================================================================

func TestResolve_AllMock(t *testing.T) {
	cat := catalog.Default()

	plan := Resolve(cat, Input{RealServices: ParseRealServices(""), Seed: false})

	assert.Equal(t, map[string]domain.Mode{
		"frontend": domain.ModeMock,
		"backend":  domain.ModeMock,
		"api":      domain.ModeMock,
	}, plan.Modes)
	assert.False(t, plan.Database)
	assert.Empty(t, plan.Unknown)

	require.Len(t, plan.Steps, len(cat.Services))
	for _, step := range plan.Steps {
		assert.Equal(t, StepService, step.Kind)
	}
}

func TestResolve_RealAPIProvisionsDatabase(t *testing.T) {
	cat := catalog.Default()

	plan := Resolve(cat, Input{RealServices: ParseRealServices("api"), Seed: false})

	assert.Equal(t, domain.ModeReal, plan.Modes["api"])
	assert.Equal(t, domain.ModeMock, plan.Modes["frontend"])
	assert.Equal(t, domain.ModeMock, plan.Modes["backend"])
	assert.True(t, plan.Database)

	require.NotEmpty(t, plan.Steps)
	assert.Equal(t, StepDatabase, plan.Steps[0].Kind, "database must be provisioned before services")
}

func TestResolve_SeedWithoutRealAPI(t *testing.T) {
	cat := catalog.Default()

	plan := Resolve(cat, Input{RealServices: ParseRealServices("frontend,backend"), Seed: true})

	assert.Equal(t, domain.ModeReal, plan.Modes["frontend"])
	assert.Equal(t, domain.ModeReal, plan.Modes["backend"])
	assert.Equal(t, domain.ModeMock, plan.Modes["api"])
	assert.True(t, plan.Database, "seed alone provisions the database")
	assert.Equal(t, StepDatabase, plan.Steps[0].Kind)
}

func TestResolve_DuplicateNamesEquivalent(t *testing.T) {
	cat := catalog.Default()

	single := Resolve(cat, Input{RealServices: ParseRealServices("api")})
	doubled := Resolve(cat, Input{RealServices: ParseRealServices("api,api")})

	assert.Equal(t, single, doubled)
}

func TestResolve_TotalMapping(t *testing.T) {
	cat := catalog.Default()

	// Every catalog service gets exactly one decision, whatever the input.
	for _, raw := range []string{"", "api", "frontend,backend,api", "nonsense"} {
		plan := Resolve(cat, Input{RealServices: ParseRealServices(raw)})
		require.Len(t, plan.Modes, len(cat.Services), "raw input %q", raw)
		for _, name := range cat.Names() {
			assert.Contains(t, plan.Modes, name)
		}
	}
}

func TestResolve_UnknownNamesInertButReported(t *testing.T) {
	cat := catalog.Default()

	plan := Resolve(cat, Input{RealServices: ParseRealServices("api,database,postgres")})

	assert.Equal(t, []string{"database", "postgres"}, plan.Unknown)
	assert.True(t, plan.Database)
	assert.Equal(t, domain.ModeReal, plan.Modes["api"])

	// Unknown names change no decision relative to the same input without them.
	clean := Resolve(cat, Input{RealServices: ParseRealServices("api")})
	assert.Equal(t, clean.Modes, plan.Modes)
	assert.Equal(t, clean.Database, plan.Database)
	assert.Equal(t, clean.Steps, plan.Steps)
}

func TestResolve_ServiceStepsFollowCatalogOrder(t *testing.T) {
	cat := catalog.Default()

	plan := Resolve(cat, Input{RealServices: ParseRealServices("api"), Seed: true})

	var services []string
	for _, step := range plan.Steps {
		if step.Kind == StepService {
			services = append(services, step.Service)
		}
	}
	assert.Equal(t, cat.Names(), services)
}

func TestResolve_Idempotent(t *testing.T) {
	cat := catalog.Default()
	in := Input{RealServices: ParseRealServices("backend , api"), Seed: true}

	first := Resolve(cat, in)
	second := Resolve(cat, in)

	assert.Equal(t, first, second)
}

func TestPlan_RealNames(t *testing.T) {
	cat := catalog.Default()

	plan := Resolve(cat, Input{RealServices: ParseRealServices("api,frontend")})

	assert.Equal(t, []string{"frontend", "api"}, plan.RealNames())
}
