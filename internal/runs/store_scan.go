package runs

import (
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, prompt, status, work_dir, script_path, audio_path, transcript_path, sentences_path, keywords_path, timeline_path, video_path, archive_path, error_message, needs_review, review_reason, progress_stage, progress_percent, progress_message, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

// text scans a nullable TEXT column, leaving NULL as "".
type text struct{ dst *string }

func (t text) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t.dst = ""
	case string:
		*t.dst = v
	case []byte:
		*t.dst = string(v)
	case time.Time:
		*t.dst = v.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Errorf("unexpected %T in text column", src)
	}
	return nil
}

// scanRun reads one row selected with runColumns.
func scanRun(row rowScanner) (*Run, error) {
	var (
		run              Run
		status           string
		needsReview      int64
		created, updated string
	)
	if err := row.Scan(
		&run.ID,
		text{&run.Prompt},
		&status,
		&run.WorkDir,
		text{&run.ScriptPath},
		text{&run.AudioPath},
		text{&run.TranscriptPath},
		text{&run.SentencesPath},
		text{&run.KeywordsPath},
		text{&run.TimelinePath},
		text{&run.VideoPath},
		text{&run.ArchivePath},
		text{&run.ErrorMessage},
		&needsReview,
		text{&run.ReviewReason},
		text{&run.ProgressStage},
		&run.ProgressPercent,
		text{&run.ProgressMessage},
		text{&created},
		text{&updated},
	); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.NeedsReview = needsReview != 0
	run.CreatedAt = parseTimestamp(created)
	run.UpdatedAt = parseTimestamp(updated)
	return &run, nil
}

// parseTimestamp accepts RFC 3339 and SQLite's CURRENT_TIMESTAMP layout.
// Anything else yields the zero time.
func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// nullable stores empty strings as NULL.
func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func flag(value bool) int {
	if value {
		return 1
	}
	return 0
}

// inClause returns "(?,?,...)" and the matching args for statuses.
func inClause(statuses []Status) (string, []any) {
	marks := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		marks[i] = "?"
		args[i] = string(status)
	}
	return "(" + strings.Join(marks, ",") + ")", args
}
