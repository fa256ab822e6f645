package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelsmith/internal/logging"
	"reelsmith/internal/runs"
	"reelsmith/internal/services"
	"reelsmith/internal/stage"
)

func (r *Runner) executeStage(ctx context.Context, runLogger *slog.Logger, stg pipelineStage, run *runs.Run) error {
	stageCtx := services.WithStage(ctx, stg.name)
	stageCtx = services.WithRequestID(stageCtx, uuid.NewString())
	stageLogger := logging.WithContext(stageCtx, runLogger)

	if stg.handler == nil {
		err := fmt.Errorf("stage %s missing handler", stg.name)
		r.handleStageFailure(stageCtx, stageLogger, stg.name, run, err)
		return err
	}
	if aware, ok := stg.handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	start := time.Now()
	setProcessingState(run, stg.processingStatus)
	if err := r.store.Update(stageCtx, run); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
	)

	if err := stg.handler.Prepare(stageCtx, run); err != nil {
		r.handleStageFailure(stageCtx, stageLogger, stg.name, run, err)
		return err
	}
	if err := r.store.Update(stageCtx, run); err != nil {
		return fmt.Errorf("persist stage preparation: %w", err)
	}

	if err := stg.handler.Execute(stageCtx, run); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted")
			run.Status = stg.startStatus
			run.SetProgress("Interrupted", "stage interrupted; resume to continue", 0)
			if persistErr := r.store.Update(context.WithoutCancel(stageCtx), run); persistErr != nil {
				stageLogger.Error("failed to persist interruption", logging.Error(persistErr))
			}
			return err
		}
		r.handleStageFailure(stageCtx, stageLogger, stg.name, run, err)
		return err
	}

	if run.Status == stg.processingStatus || run.Status == "" {
		run.Status = stg.doneStatus
	}
	if run.Status == runs.StatusCompleted {
		run.ProgressStage = deriveStageLabel(runs.StatusCompleted)
		run.ProgressPercent = 100
	}
	if err := r.store.Update(stageCtx, run); err != nil {
		return fmt.Errorf("persist stage result: %w", err)
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(run.Status)),
		logging.String("progress_message", strings.TrimSpace(run.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(start)),
	)
	return nil
}

func (r *Runner) handleStageFailure(ctx context.Context, logger *slog.Logger, stageName string, run *runs.Run, stageErr error) {
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = stageName + " failed"
	}
	status := services.FailureStatus(stageErr)
	run.SetFailed(status, message)

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(run.Status)),
		logging.String("error_message", message),
		logging.String(logging.FieldErrorHint, services.Hint(stageErr)),
		logging.Error(stageErr),
	)
	if err := r.store.Update(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
	if err := r.notify.RunFailed(context.WithoutCancel(ctx), run, stageName); err != nil {
		logging.WarnWithContext(logger, "failure notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no ntfy alert was sent for this failure"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

func setProcessingState(run *runs.Run, processing runs.Status) {
	run.Status = processing
	label := deriveStageLabel(processing)
	run.SetProgress(label, label+" started", 0)
	run.ErrorMessage = ""
}
