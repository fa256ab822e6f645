package api

import (
	"sort"
	"time"

	"reelsmith/internal/alignment"
	"reelsmith/internal/keywords"
	"reelsmith/internal/runs"
	"reelsmith/internal/stage"
	"reelsmith/internal/transcript"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Run describes a ledger entry in a transport-friendly format.
type Run struct {
	ID             int64       `json:"id"`
	Prompt         string      `json:"prompt,omitempty"`
	Status         string      `json:"status"`
	WorkDir        string      `json:"workDir"`
	Progress       RunProgress `json:"progress"`
	ErrorMessage   string      `json:"errorMessage,omitempty"`
	NeedsReview    bool        `json:"needsReview"`
	ReviewReason   string      `json:"reviewReason,omitempty"`
	ScriptPath     string      `json:"scriptPath,omitempty"`
	AudioPath      string      `json:"audioPath,omitempty"`
	TranscriptPath string      `json:"transcriptPath,omitempty"`
	SentencesPath  string      `json:"sentencesPath,omitempty"`
	KeywordsPath   string      `json:"keywordsPath,omitempty"`
	TimelinePath   string      `json:"timelinePath,omitempty"`
	VideoPath      string      `json:"videoPath,omitempty"`
	ArchivePath    string      `json:"archivePath,omitempty"`
	CreatedAt      string      `json:"createdAt,omitempty"`
	UpdatedAt      string      `json:"updatedAt,omitempty"`
}

// RunProgress captures stage progress for a run.
type RunProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// StageHealth reports one stage's readiness.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// RunSummary buckets run counts by lifecycle.
type RunSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Failed    int `json:"failed"`
	Review    int `json:"review"`
	Completed int `json:"completed"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string         `json:"status"`
	Stages  []StageHealth  `json:"stages,omitempty"`
	Runs    map[string]int `json:"runs"`
	Summary RunSummary     `json:"summary"`
}

// AlignRequest is the body of POST /v1/align.
type AlignRequest struct {
	Keywords   []keywords.Token      `json:"keywords" binding:"required"`
	Transcript transcript.Transcript `json:"transcript"`
	MediaRoot  string                `json:"media_root"`
}

// AlignResponse carries the timeline plus the number of keywords dropped.
type AlignResponse struct {
	Timeline []alignment.Segment `json:"timeline"`
	Dropped  int                 `json:"dropped"`
}

// FromRun converts a ledger run into its DTO.
func FromRun(r *runs.Run) Run {
	if r == nil {
		return Run{}
	}
	dto := Run{
		ID:      r.ID,
		Prompt:  r.Prompt,
		Status:  string(r.Status),
		WorkDir: r.WorkDir,
		Progress: RunProgress{
			Stage:   r.ProgressStage,
			Percent: r.ProgressPercent,
			Message: r.ProgressMessage,
		},
		ErrorMessage:   r.ErrorMessage,
		NeedsReview:    r.NeedsReview,
		ReviewReason:   r.ReviewReason,
		ScriptPath:     r.ScriptPath,
		AudioPath:      r.AudioPath,
		TranscriptPath: r.TranscriptPath,
		SentencesPath:  r.SentencesPath,
		KeywordsPath:   r.KeywordsPath,
		TimelinePath:   r.TimelinePath,
		VideoPath:      r.VideoPath,
		ArchivePath:    r.ArchivePath,
	}
	if dto.Progress.Stage == "" {
		dto.Progress.Stage = dto.Status
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !r.UpdatedAt.IsZero() {
		dto.UpdatedAt = r.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromSummary converts ledger lifecycle counts.
func FromSummary(sum runs.Summary) RunSummary {
	return RunSummary(sum)
}

// FromStageHealth converts stage health records in order.
func FromStageHealth(health []stage.Health) []StageHealth {
	out := make([]StageHealth, 0, len(health))
	for _, h := range health {
		out = append(out, StageHealth{Name: h.Name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// SortRunsNewestFirst orders runs by CreatedAt descending, breaking ties by ID descending.
func SortRunsNewestFirst(items []Run) []Run {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]Run, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		ti := parseTime(sorted[i].CreatedAt)
		tj := parseTime(sorted[j].CreatedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})
	return sorted
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}
