// Package deploy drives a resolved plan onto the cluster. It installs the
// database before any service that might need it, waits for each workload
// within a bounded window, and records the run in history. It holds no state
// of its own; re-running a deploy converges the cluster rather than
// replaying a diff.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
	"github.com/lukecassidy/kind-stack-dev/internal/core/resolver"
	"github.com/lukecassidy/kind-stack-dev/internal/core/values"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/helm"
)

// =============================================================================
// Collaborator Interfaces
// =============================================================================

// HelmRunner is the slice of helm the orchestrator needs.
type HelmRunner interface {
	UpgradeInstall(ctx context.Context, rel helm.Release) error
	Uninstall(ctx context.Context, name, namespace string) error
}

// Cluster is the slice of the kube client the orchestrator needs.
type Cluster interface {
	EnsureNamespace(ctx context.Context, name string) error
	WaitDeploymentReady(ctx context.Context, namespace, name string, timeout time.Duration) error
}

// RunStore records run history.
type RunStore interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	UpdateRun(ctx context.Context, run *domain.Run) error
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures the orchestrator.
type Config struct {
	// Cluster is the kind cluster name, recorded on runs.
	Cluster string

	// Namespace is where all releases are installed.
	Namespace string

	// ReleasePrefix namespaces release names, e.g. "kindstack" yields
	// "kindstack-api".
	ReleasePrefix string

	// DatabaseReadyTimeout bounds the wait for the database workload.
	// Default: 2 minutes.
	DatabaseReadyTimeout time.Duration

	// ServiceReadyTimeout bounds the wait for each service workload.
	// Default: 90 seconds.
	ServiceReadyTimeout time.Duration
}

// =============================================================================
// Orchestrator
// =============================================================================

// Orchestrator applies plans to the cluster.
type Orchestrator struct {
	helm    HelmRunner
	cluster Cluster
	store   RunStore
	config  Config
	logger  *slog.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(h HelmRunner, cluster Cluster, s RunStore, config Config, logger *slog.Logger) *Orchestrator {
	if config.DatabaseReadyTimeout == 0 {
		config.DatabaseReadyTimeout = 2 * time.Minute
	}
	if config.ServiceReadyTimeout == 0 {
		config.ServiceReadyTimeout = 90 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		helm:    h,
		cluster: cluster,
		store:   s,
		config:  config,
		logger:  logger.With("component", "deploy"),
	}
}

// =============================================================================
// Up
// =============================================================================

// Up applies a resolved plan: namespace, then the plan's steps in order,
// waiting for each workload before moving on. The first failure stops the
// deploy; nothing already installed is rolled back, and the failure is
// recorded on the run.
func (o *Orchestrator) Up(ctx context.Context, cat catalog.Catalog, plan resolver.Plan) (*domain.Run, error) {
	run := domain.NewRun(o.config.Cluster, o.config.Namespace, plan.RealNames(), plan.Seed)
	run.Database = plan.Database
	run.Modes = plan.Modes

	o.logger.Info("starting deploy",
		"run_id", run.ID,
		"real_services", run.RealServices,
		"seed", plan.Seed,
		"database", plan.Database,
	)

	for _, name := range plan.Unknown {
		o.logger.Warn("ignoring unknown service name", "service", name)
	}

	if err := o.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	if err := o.apply(ctx, cat, plan); err != nil {
		return run, o.finish(ctx, run, err)
	}

	return run, o.finish(ctx, run, nil)
}

// apply walks the plan's steps against the cluster.
func (o *Orchestrator) apply(ctx context.Context, cat catalog.Catalog, plan resolver.Plan) error {
	if err := o.cluster.EnsureNamespace(ctx, o.config.Namespace); err != nil {
		return fmt.Errorf("failed to ensure namespace %s: %w", o.config.Namespace, err)
	}

	for _, step := range plan.Steps {
		switch step.Kind {
		case resolver.StepDatabase:
			if err := o.installDatabase(ctx, cat.Database, plan.Seed); err != nil {
				return err
			}
		case resolver.StepService:
			svc, ok := cat.Lookup(step.Service)
			if !ok {
				return fmt.Errorf("plan references unknown service %q", step.Service)
			}
			if err := o.installService(ctx, svc, step.Mode, cat.Database); err != nil {
				return err
			}
		}
	}

	return nil
}

// installDatabase installs the database release and waits until its workload
// is ready. Dependents are only installed after this returns, so a real api
// never starts against an absent database.
func (o *Orchestrator) installDatabase(ctx context.Context, db catalog.Database, seed bool) error {
	release := helm.Release{
		Name:      values.ReleaseName(o.config.ReleasePrefix, db.Workload),
		Chart:     db.Chart,
		Namespace: o.config.Namespace,
		Values:    values.ForDatabase(db, seed),
	}

	o.logger.Info("installing database", "release", release.Name, "seed", seed)

	if err := o.helm.UpgradeInstall(ctx, release); err != nil {
		return fmt.Errorf("database install failed: %w", err)
	}

	if err := o.cluster.WaitDeploymentReady(ctx, o.config.Namespace, db.Workload, o.config.DatabaseReadyTimeout); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	return nil
}

// installService installs one service release in its resolved mode and waits
// for its workload.
func (o *Orchestrator) installService(ctx context.Context, svc catalog.Service, mode domain.Mode, db catalog.Database) error {
	release := helm.Release{
		Name:      values.ReleaseName(o.config.ReleasePrefix, svc.Name),
		Chart:     svc.Chart,
		Namespace: o.config.Namespace,
		Values:    values.ForService(svc, mode, db),
	}

	o.logger.Info("installing service", "release", release.Name, "mode", mode)

	if err := o.helm.UpgradeInstall(ctx, release); err != nil {
		return fmt.Errorf("service %s install failed: %w", svc.Name, err)
	}

	if err := o.cluster.WaitDeploymentReady(ctx, o.config.Namespace, svc.WorkloadName(), o.config.ServiceReadyTimeout); err != nil {
		return fmt.Errorf("service %s not ready: %w", svc.Name, err)
	}

	return nil
}

// finish completes the run and persists its terminal status. The original
// deploy error wins over any bookkeeping error.
func (o *Orchestrator) finish(ctx context.Context, run *domain.Run, cause error) error {
	if err := run.Complete(cause); err != nil {
		o.logger.Error("failed to complete run", "run_id", run.ID, "error", err)
	}

	if err := o.store.UpdateRun(ctx, run); err != nil {
		o.logger.Error("failed to persist run", "run_id", run.ID, "error", err)
		if cause == nil {
			return fmt.Errorf("failed to persist run: %w", err)
		}
	}

	if cause != nil {
		o.logger.Error("deploy failed", "run_id", run.ID, "error", cause)
		return cause
	}

	o.logger.Info("deploy succeeded", "run_id", run.ID, "duration", run.Duration().String())
	return nil
}

// =============================================================================
// Down
// =============================================================================

// Down uninstalls the stack in reverse order: services first, database last.
// Releases that are not installed are skipped, so down is safe to run
// against a partially deployed or already-clean namespace.
func (o *Orchestrator) Down(ctx context.Context, cat catalog.Catalog) error {
	o.logger.Info("tearing down stack", "namespace", o.config.Namespace)

	for i := len(cat.Services) - 1; i >= 0; i-- {
		svc := cat.Services[i]
		if err := o.uninstall(ctx, values.ReleaseName(o.config.ReleasePrefix, svc.Name)); err != nil {
			return fmt.Errorf("failed to uninstall %s: %w", svc.Name, err)
		}
	}

	if err := o.uninstall(ctx, values.ReleaseName(o.config.ReleasePrefix, cat.Database.Workload)); err != nil {
		return fmt.Errorf("failed to uninstall database: %w", err)
	}

	o.logger.Info("stack removed")
	return nil
}

// uninstall removes one release, tolerating its absence.
func (o *Orchestrator) uninstall(ctx context.Context, name string) error {
	err := o.helm.Uninstall(ctx, name, o.config.Namespace)
	if err == nil {
		return nil
	}
	if errors.Is(err, helm.ErrReleaseNotFound) {
		o.logger.Debug("release not installed", "release", name)
		return nil
	}
	return err
}
