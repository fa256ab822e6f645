package runs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a run.
type Status string

const (
	StatusPending      Status = "pending"
	StatusScripting    Status = "scripting"
	StatusScripted     Status = "scripted"
	StatusNarrating    Status = "narrating"
	StatusNarrated     Status = "narrated"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusExtracting   Status = "extracting"
	StatusExtracted    Status = "extracted"
	StatusAligning     Status = "aligning"
	StatusAligned      Status = "aligned"
	StatusAcquiring    Status = "acquiring"
	StatusAcquired     Status = "acquired"
	StatusRendering    Status = "rendering"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusReview       Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusScripting,
	StatusScripted,
	StatusNarrating,
	StatusNarrated,
	StatusTranscribing,
	StatusTranscribed,
	StatusExtracting,
	StatusExtracted,
	StatusAligning,
	StatusAligned,
	StatusAcquiring,
	StatusAcquired,
	StatusRendering,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions returns each processing status to the status that
// precedes it, so an interrupted stage restarts from its input artifact.
var stageRollbackTransitions = []statusTransition{
	{from: StatusScripting, to: StatusPending},
	{from: StatusNarrating, to: StatusScripted},
	{from: StatusTranscribing, to: StatusNarrated},
	{from: StatusExtracting, to: StatusTranscribed},
	{from: StatusAligning, to: StatusExtracted},
	{from: StatusAcquiring, to: StatusAligned},
	{from: StatusRendering, to: StatusAcquired},
}

var processingStatuses = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(stageRollbackTransitions))
	for _, tr := range stageRollbackTransitions {
		set[tr.from] = struct{}{}
	}
	return set
}()

// Run is a single prompt-to-video pipeline execution persisted in SQLite.
type Run struct {
	ID              int64
	Prompt          string
	Status          Status
	WorkDir         string
	ScriptPath      string
	AudioPath       string
	TranscriptPath  string
	SentencesPath   string
	KeywordsPath    string
	TimelinePath    string
	VideoPath       string
	ArchivePath     string
	ErrorMessage    string
	NeedsReview     bool
	ReviewReason    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsProcessing returns true when the run is inside a stage.
func (r Run) IsProcessing() bool {
	return IsProcessingStatus(r.Status)
}

// IsTerminal reports whether the run has stopped progressing.
func (r Run) IsTerminal() bool {
	switch r.Status {
	case StatusCompleted, StatusFailed, StatusReview:
		return true
	default:
		return false
	}
}

// ResumeStatus returns the status a retried run restarts from, derived from
// the newest artifact it already recorded.
func (r Run) ResumeStatus() Status {
	switch {
	case r.VideoPath != "":
		return StatusCompleted
	case r.TimelinePath != "":
		return StatusAligned
	case r.KeywordsPath != "":
		return StatusExtracted
	case r.TranscriptPath != "" && r.SentencesPath != "":
		return StatusTranscribed
	case r.AudioPath != "":
		return StatusNarrated
	case r.ScriptPath != "":
		return StatusScripted
	default:
		return StatusPending
	}
}

// SetProgress updates all three progress fields together.
func (r *Run) SetProgress(stage, message string, percent float64) {
	r.ProgressStage = stage
	r.ProgressMessage = message
	r.ProgressPercent = percent
}

// SetFailed marks the run with a terminal failure status and message.
func (r *Run) SetFailed(status Status, message string) {
	if status != StatusReview {
		status = StatusFailed
	}
	r.Status = status
	r.ErrorMessage = message
	r.ProgressMessage = message
	r.ProgressPercent = 0
	r.ProgressStage = "Failed"
	if status == StatusReview {
		r.NeedsReview = true
		r.ReviewReason = message
	}
}
