package runs

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ResetStuckProcessing returns runs left inside a stage (for example after a
// crash) to the status preceding that stage.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	var (
		cases strings.Builder
		args  []any
		from  []Status
	)
	for _, tr := range stageRollbackTransitions {
		cases.WriteString(" WHEN ? THEN ?")
		args = append(args, tr.from, tr.to)
		from = append(from, tr.from)
	}
	in, inArgs := inClause(from)
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))
	args = append(args, inArgs...)

	query := `UPDATE runs
        SET status = CASE status` + cases.String() + ` ELSE status END,
            progress_stage = 'Reset from stuck processing',
            progress_percent = 0, progress_message = NULL, updated_at = ?
        WHERE status IN ` + in
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset stuck runs: %w", err)
	}
	return res.RowsAffected()
}

// Retry moves failed or review runs back to the status implied by their
// newest recorded artifact. With no ids every failed or review run is retried.
func (s *Store) Retry(ctx context.Context, ids ...int64) (int64, error) {
	var candidates []*Run
	if len(ids) == 0 {
		list, err := s.List(ctx, StatusFailed, StatusReview)
		if err != nil {
			return 0, err
		}
		candidates = list
	} else {
		for _, id := range ids {
			run, err := s.GetByID(ctx, id)
			if err != nil {
				return 0, err
			}
			if run == nil || (run.Status != StatusFailed && run.Status != StatusReview) {
				continue
			}
			candidates = append(candidates, run)
		}
	}

	var updated int64
	for _, run := range candidates {
		run.Status = run.ResumeStatus()
		if run.Status == StatusCompleted {
			// A recorded video with a failed status means the archive step
			// failed; rerun rendering.
			run.Status = StatusAcquired
		}
		run.ErrorMessage = ""
		run.NeedsReview = false
		run.ReviewReason = ""
		run.SetProgress("Retry requested", "", 0)
		if err := s.Update(ctx, run); err != nil {
			return updated, fmt.Errorf("retry run %d: %w", run.ID, err)
		}
		updated++
	}
	return updated, nil
}
