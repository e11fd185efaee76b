package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface
// =============================================================================

// executor abstracts database operations so query helpers work against both
// a connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Run Operations
// =============================================================================

// runRow represents a run row in the database.
type runRow struct {
	ID           string  `db:"id"`
	Cluster      string  `db:"cluster"`
	Namespace    string  `db:"namespace"`
	RealServices string  `db:"real_services"`
	Seed         bool    `db:"seed"`
	Database     bool    `db:"database_provisioned"`
	Modes        *string `db:"modes"`
	Status       string  `db:"status"`
	ErrorMessage string  `db:"error_message"`
	StartedAt    string  `db:"started_at"`
	FinishedAt   *string `db:"finished_at"`
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *domain.Run) error {
	return createRun(ctx, s.db, run)
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *domain.Run) error {
	return updateRun(ctx, s.db, run)
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	return getRun(ctx, s.db, id)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, opts ListOptions) ([]domain.Run, error) {
	return listRuns(ctx, s.db, opts)
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (*domain.Run, error) {
	return latestRun(ctx, s.db)
}

func (s *SQLiteStore) CountRunsByStatus(ctx context.Context) (map[domain.RunStatus]int64, error) {
	return countRunsByStatus(ctx, s.db)
}

// =============================================================================
// Query Helpers
// =============================================================================

func createRun(ctx context.Context, exec executor, run *domain.Run) error {
	row, err := runToRow(run)
	if err != nil {
		return NewStoreError("CreateRun", "run", run.ID, "failed to serialize modes", ErrInvalidData)
	}

	query := `
		INSERT INTO runs (
			id, cluster, namespace, real_services, seed, database_provisioned,
			modes, status, error_message, started_at, finished_at
		) VALUES (
			:id, :cluster, :namespace, :real_services, :seed, :database_provisioned,
			:modes, :status, :error_message, :started_at, :finished_at
		)`

	_, err = exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: runs.id") {
			return NewStoreError("CreateRun", "run", run.ID, "run with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateRun", "run", run.ID, err.Error(), err)
	}

	return nil
}

func updateRun(ctx context.Context, exec executor, run *domain.Run) error {
	row, err := runToRow(run)
	if err != nil {
		return NewStoreError("UpdateRun", "run", run.ID, "failed to serialize modes", ErrInvalidData)
	}

	query := `
		UPDATE runs SET
			cluster = :cluster,
			namespace = :namespace,
			real_services = :real_services,
			seed = :seed,
			database_provisioned = :database_provisioned,
			modes = :modes,
			status = :status,
			error_message = :error_message,
			started_at = :started_at,
			finished_at = :finished_at
		WHERE id = :id`

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("UpdateRun", "run", run.ID, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("UpdateRun", "run", run.ID, "run not found", ErrNotFound)
	}

	return nil
}

func getRun(ctx context.Context, exec executor, id string) (*domain.Run, error) {
	query := `SELECT * FROM runs WHERE id = ?`

	var row runRow
	err := exec.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetRun", "run", id, "run not found", ErrNotFound)
		}
		return nil, NewStoreError("GetRun", "run", id, err.Error(), err)
	}

	return rowToRun(&row)
}

func listRuns(ctx context.Context, exec executor, opts ListOptions) ([]domain.Run, error) {
	opts = opts.Normalize()
	query := `SELECT * FROM runs ORDER BY started_at DESC LIMIT ? OFFSET ?`

	var rows []runRow
	err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, NewStoreError("ListRuns", "run", "", err.Error(), err)
	}

	runs := make([]domain.Run, 0, len(rows))
	for _, row := range rows {
		run, err := rowToRun(&row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, nil
}

func countRunsByStatus(ctx context.Context, exec executor) (map[domain.RunStatus]int64, error) {
	query := `SELECT status, COUNT(*) AS count FROM runs GROUP BY status`

	var rows []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	if err := exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, NewStoreError("CountRunsByStatus", "run", "", err.Error(), err)
	}

	counts := make(map[domain.RunStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.RunStatus(row.Status)] = row.Count
	}

	return counts, nil
}

func latestRun(ctx context.Context, exec executor) (*domain.Run, error) {
	query := `SELECT * FROM runs ORDER BY started_at DESC LIMIT 1`

	var row runRow
	err := exec.GetContext(ctx, &row, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("LatestRun", "run", "", "no runs recorded", ErrNotFound)
		}
		return nil, NewStoreError("LatestRun", "run", "", err.Error(), err)
	}

	return rowToRun(&row)
}

// =============================================================================
// Row Conversion
// =============================================================================

// runToRow converts a domain.Run to a named-query parameter map.
func runToRow(run *domain.Run) (map[string]any, error) {
	modesJSON, err := json.Marshal(run.Modes)
	if err != nil {
		return nil, err
	}

	var finishedAt *string
	if run.FinishedAt != nil {
		s := run.FinishedAt.Format(time.RFC3339)
		finishedAt = &s
	}

	return map[string]any{
		"id":                   run.ID,
		"cluster":              run.Cluster,
		"namespace":            run.Namespace,
		"real_services":        strings.Join(run.RealServices, ","),
		"seed":                 run.Seed,
		"database_provisioned": run.Database,
		"modes":                string(modesJSON),
		"status":               string(run.Status),
		"error_message":        run.ErrorMessage,
		"started_at":           run.StartedAt.Format(time.RFC3339),
		"finished_at":          finishedAt,
	}, nil
}

// rowToRun converts a database row to a domain.Run.
func rowToRun(row *runRow) (*domain.Run, error) {
	startedAt, _ := time.Parse(time.RFC3339, row.StartedAt)

	var finishedAt *time.Time
	if row.FinishedAt != nil && *row.FinishedAt != "" {
		t, _ := time.Parse(time.RFC3339, *row.FinishedAt)
		finishedAt = &t
	}

	var modes map[string]domain.Mode
	if row.Modes != nil && *row.Modes != "" && *row.Modes != "null" {
		if err := json.Unmarshal([]byte(*row.Modes), &modes); err != nil {
			return nil, NewStoreError("rowToRun", "run", row.ID, "failed to parse modes", ErrInvalidData)
		}
	}

	var realServices []string
	if row.RealServices != "" {
		realServices = strings.Split(row.RealServices, ",")
	}

	return &domain.Run{
		ID:           row.ID,
		Cluster:      row.Cluster,
		Namespace:    row.Namespace,
		RealServices: realServices,
		Seed:         row.Seed,
		Database:     row.Database,
		Modes:        modes,
		Status:       domain.RunStatus(row.Status),
		ErrorMessage: row.ErrorMessage,
		StartedAt:    startedAt,
		FinishedAt:   finishedAt,
	}, nil
}
