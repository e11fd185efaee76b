package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fixtures
// =============================================================================

const devStackCompose = `
services:
  frontend:
    image: devstack/frontend:latest
    ports:
      - "3000:3000"
    depends_on:
      backend:
        condition: service_started
  backend:
    image: devstack/backend:latest
    ports:
      - "8081:8081"
  api:
    image: devstack/api:latest
    ports:
      - "8080:8080"
    depends_on:
      postgres:
        condition: service_started
  postgres:
    image: postgres:15-alpine
    environment:
      POSTGRES_DB: appdb
      POSTGRES_USER: appuser
      POSTGRES_PASSWORD: devpassword
    ports:
      - "5432:5432"
`

// =============================================================================
// Parse Tests
// =============================================================================

func TestParse_ValidProject(t *testing.T) {
	project, err := Parse(devStackCompose)
	require.NoError(t, err)

	assert.Len(t, project.Services, 4)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse("   \n  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse("services: [unterminated")
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestParse_NoServices(t *testing.T) {
	_, err := Parse("services: {}\n")
	assert.ErrorIs(t, err, ErrNoServices)
}

// =============================================================================
// Catalog Conversion Tests
// =============================================================================

func TestToCatalog_FoldsDatabaseService(t *testing.T) {
	project, err := Parse(devStackCompose)
	require.NoError(t, err)

	cat, err := ToCatalog(project)
	require.NoError(t, err)

	// postgres is the database, not a catalog service
	assert.False(t, cat.Contains("postgres"))
	assert.Equal(t, "postgres", cat.Database.Host)
	assert.Equal(t, "appdb", cat.Database.Name)
	assert.Equal(t, "appuser", cat.Database.User)
	assert.Equal(t, "devpassword", cat.Database.Password)
}

func TestToCatalog_ServiceConversion(t *testing.T) {
	project, err := Parse(devStackCompose)
	require.NoError(t, err)

	cat, err := ToCatalog(project)
	require.NoError(t, err)

	api, ok := cat.Lookup("api")
	require.True(t, ok)
	assert.Equal(t, 8080, api.Port)
	assert.Equal(t, "charts/api", api.Chart)
	assert.True(t, api.NeedsDatabase, "api depends on postgres")

	frontend, ok := cat.Lookup("frontend")
	require.True(t, ok)
	assert.Equal(t, 3000, frontend.Port)
	assert.False(t, frontend.NeedsDatabase)
}

func TestToCatalog_DependencyOrder(t *testing.T) {
	project, err := Parse(devStackCompose)
	require.NoError(t, err)

	cat, err := ToCatalog(project)
	require.NoError(t, err)

	names := cat.Names()
	require.Len(t, names, 3)

	// frontend depends on backend, so backend must come first
	backendIdx, frontendIdx := -1, -1
	for i, name := range names {
		switch name {
		case "backend":
			backendIdx = i
		case "frontend":
			frontendIdx = i
		}
	}
	require.NotEqual(t, -1, backendIdx)
	require.NotEqual(t, -1, frontendIdx)
	assert.Less(t, backendIdx, frontendIdx)
}

func TestToCatalog_Deterministic(t *testing.T) {
	project, err := Parse(devStackCompose)
	require.NoError(t, err)

	first, err := ToCatalog(project)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := ToCatalog(project)
		require.NoError(t, err)
		assert.Equal(t, first.Names(), again.Names())
	}
}

func TestToCatalog_NoPublishedPort(t *testing.T) {
	project, err := Parse(`
services:
  worker:
    image: devstack/worker:latest
`)
	require.NoError(t, err)

	_, err = ToCatalog(project)
	assert.ErrorIs(t, err, ErrNoPublishedPort)
}

func TestToCatalog_OnlyDatabase(t *testing.T) {
	project, err := Parse(`
services:
  postgres:
    image: postgres:15
    ports:
      - "5432:5432"
`)
	require.NoError(t, err)

	_, err = ToCatalog(project)
	assert.ErrorIs(t, err, ErrNoServices)
}

func TestDatabaseImage(t *testing.T) {
	assert.True(t, databaseImage("postgres:15-alpine"))
	assert.True(t, databaseImage("docker.io/library/postgres:16"))
	assert.False(t, databaseImage("devstack/api:latest"))
	assert.False(t, databaseImage("mysql:8"))
}
