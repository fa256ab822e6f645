package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/notifications"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/preflight"
	"reelsmith/internal/runs"
	"reelsmith/internal/services"
	"reelsmith/internal/stage"
)

// lockFileName is created inside each run's work directory.
const lockFileName = ".reelsmith.lock"

// ErrRunLocked reports a run already being processed by another process.
var ErrRunLocked = errors.New("run is locked by another process")

// Runner executes runs stage by stage.
type Runner struct {
	cfg    *config.Config
	store  *runs.Store
	logger *slog.Logger
	stages []pipelineStage
	notify notifications.Service

	preflight func(context.Context, *config.Config) []preflight.Result
}

// Option customizes a Runner.
type Option func(*Runner)

// WithoutPreflight skips the readiness checks that normally precede a run.
func WithoutPreflight() Option {
	return func(r *Runner) {
		r.preflight = nil
	}
}

// WithNotifier replaces the ntfy notifier derived from the config.
func WithNotifier(svc notifications.Service) Option {
	return func(r *Runner) {
		if svc != nil {
			r.notify = svc
		}
	}
}

// RunLogPath is the per-run log file the runner tees records into.
func RunLogPath(logDir string, runID int64) string {
	return filepath.Join(logDir, "runs", fmt.Sprintf("%d.log", runID))
}

// NewRunner builds a runner over the provided stage set.
func NewRunner(cfg *config.Config, store *runs.Store, set *pipeline.Set, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		store:     store,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		stages:    stagesFromSet(set),
		notify:    notifications.NewService(cfg),
		preflight: preflight.RunAll,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs every remaining stage of run. It returns nil once the run
// completes, the stage error when a stage fails (the run is persisted as
// failed or review), or ctx.Err() when interrupted, in which case the run is
// returned to the status preceding the interrupted stage.
func (r *Runner) Execute(ctx context.Context, run *runs.Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.IsTerminal() {
		return fmt.Errorf("run %d is %s; retry it first", run.ID, run.Status)
	}
	if err := os.MkdirAll(run.WorkDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "workflow", "create work dir", run.WorkDir, err)
	}

	lock := flock.New(filepath.Join(run.WorkDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock work dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrRunLocked, run.WorkDir)
	}
	defer func() { _ = lock.Unlock() }()

	ctx = services.WithRunID(ctx, run.ID)
	logger, closeLog := r.runLogger(run)
	defer closeLog()

	if run.IsProcessing() {
		r.rollback(run)
	}
	if err := r.runPreflight(ctx, logger); err != nil {
		return err
	}

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("status", string(run.Status)),
		logging.String("work_dir", run.WorkDir),
	)
	start := time.Now()
	for run.Status != runs.StatusCompleted {
		stg, ok := r.stageFor(run.Status)
		if !ok {
			return fmt.Errorf("no stage configured for status %q", run.Status)
		}
		if err := r.executeStage(ctx, logger, stg, run); err != nil {
			return err
		}
	}
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("video_path", run.VideoPath),
		logging.Duration("run_duration", time.Since(start)),
	)
	if err := r.notify.RunCompleted(context.WithoutCancel(ctx), run, time.Since(start)); err != nil {
		logging.WarnWithContext(logger, "completion notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the run completed but no ntfy alert was sent"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
	return nil
}

// Health reports each stage's readiness.
func (r *Runner) Health(ctx context.Context) []stage.Health {
	out := make([]stage.Health, 0, len(r.stages))
	for _, stg := range r.stages {
		if stg.handler == nil {
			out = append(out, stage.Unhealthy(stg.name, "handler not configured"))
			continue
		}
		out = append(out, stg.handler.HealthCheck(ctx))
	}
	return out
}

func (r *Runner) stageFor(status runs.Status) (pipelineStage, bool) {
	for _, stg := range r.stages {
		if stg.startStatus == status {
			return stg, true
		}
	}
	return pipelineStage{}, false
}

// rollback returns a run left inside a stage to that stage's start status.
func (r *Runner) rollback(run *runs.Run) {
	for _, stg := range r.stages {
		if stg.processingStatus == run.Status {
			run.Status = stg.startStatus
			return
		}
	}
}

func (r *Runner) runLogger(run *runs.Run) (*slog.Logger, func()) {
	base := logging.WithContext(services.WithRunID(context.Background(), run.ID), r.logger)
	if r.cfg == nil || strings.TrimSpace(r.cfg.Paths.LogDir) == "" {
		return base, func() {}
	}
	path := RunLogPath(r.cfg.Paths.LogDir, run.ID)
	handler, closer, err := logging.OpenRunLog(path, r.cfg.Logging.Level)
	if err != nil {
		logging.WarnWithContext(base, "run log unavailable", "run_log_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run logs to the main log only"),
			logging.String(logging.FieldErrorHint, "check paths.log_dir permissions"),
		)
		return base, func() {}
	}
	return logging.TeeLogger(base, handler), func() { _ = closer.Close() }
}

func (r *Runner) runPreflight(ctx context.Context, logger *slog.Logger) error {
	if r.preflight == nil {
		return nil
	}
	failures := preflight.Failures(r.preflight(ctx, r.cfg))
	if len(failures) == 0 {
		return nil
	}
	for _, failure := range failures {
		logger.Error("preflight check failed",
			logging.String("check", failure),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldErrorHint, "fix the reported issue and resume the run"),
		)
	}
	return services.Wrap(services.ErrConfiguration, "workflow", "preflight", strings.Join(failures, "; "), nil)
}
