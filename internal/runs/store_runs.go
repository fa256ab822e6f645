package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NewRun inserts a pending run for a prompt rooted at workDir.
func (s *Store) NewRun(ctx context.Context, prompt, workDir string) (*Run, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("prompt is required")
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, errors.New("work directory is required")
	}
	return s.insert(ctx, &Run{Prompt: prompt, WorkDir: workDir, Status: StatusPending})
}

// NewFromArtifacts inserts a run that skips generation and begins at the
// aligning stage using an existing transcript and keyword list.
func (s *Store) NewFromArtifacts(ctx context.Context, workDir, transcriptPath, keywordsPath, audioPath string) (*Run, error) {
	if strings.TrimSpace(transcriptPath) == "" || strings.TrimSpace(keywordsPath) == "" {
		return nil, errors.New("transcript and keywords paths are required")
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, errors.New("work directory is required")
	}
	return s.insert(ctx, &Run{
		WorkDir:        workDir,
		Status:         StatusExtracted,
		TranscriptPath: transcriptPath,
		KeywordsPath:   keywordsPath,
		AudioPath:      audioPath,
	})
}

func (s *Store) insert(ctx context.Context, run *Run) (*Run, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.exec(
		ctx,
		`INSERT INTO runs (
            prompt, status, work_dir, transcript_path, keywords_path, audio_path,
            created_at, updated_at, progress_percent
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullable(run.Prompt),
		run.Status,
		run.WorkDir,
		nullable(run.TranscriptPath),
		nullable(run.KeywordsPath),
		nullable(run.AudioPath),
		timestamp,
		timestamp,
		0.0,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a run by identifier. It returns nil when no run matches.
func (s *Store) GetByID(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Update persists changes to an existing run.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	run.UpdatedAt = time.Now().UTC()
	if _, err := s.exec(
		ctx,
		`UPDATE runs
         SET prompt = ?, status = ?, work_dir = ?, script_path = ?, audio_path = ?,
             transcript_path = ?, sentences_path = ?, keywords_path = ?, timeline_path = ?,
             video_path = ?, archive_path = ?, error_message = ?, needs_review = ?,
             review_reason = ?, progress_stage = ?, progress_percent = ?, progress_message = ?,
             updated_at = ?
         WHERE id = ?`,
		nullable(run.Prompt),
		run.Status,
		run.WorkDir,
		nullable(run.ScriptPath),
		nullable(run.AudioPath),
		nullable(run.TranscriptPath),
		nullable(run.SentencesPath),
		nullable(run.KeywordsPath),
		nullable(run.TimelinePath),
		nullable(run.VideoPath),
		nullable(run.ArchivePath),
		nullable(run.ErrorMessage),
		flag(run.NeedsReview),
		nullable(run.ReviewReason),
		nullable(run.ProgressStage),
		run.ProgressPercent,
		nullable(run.ProgressMessage),
		run.UpdatedAt.Format(time.RFC3339Nano),
		run.ID,
	); err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// List returns runs filtered by status set (or all runs when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Run, error) {
	ctx = ensureContext(ctx)
	var (
		rows *sql.Rows
		err  error
	)

	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if len(statuses) > 0 {
		var in string
		in, args = inClause(statuses)
		query += ` WHERE status IN ` + in
	}
	rows, err = s.db.QueryContext(ctx, query+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Remove deletes a run by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes runs with the given statuses, or every run when none is provided.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if len(statuses) == 0 {
		res, err = s.exec(ctx, `DELETE FROM runs`)
	} else {
		in, args := inClause(statuses)
		res, err = s.exec(ctx, `DELETE FROM runs WHERE status IN `+in, args...)
	}
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}
