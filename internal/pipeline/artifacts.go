package pipeline

import (
	"path/filepath"
	"strings"

	"reelsmith/internal/runs"
	"reelsmith/internal/services"
)

const (
	ScriptFile     = "script.txt"
	AudioFile      = "audio.mp3"
	TranscriptFile = "transcript.json"
	SentencesFile  = "sentences.json"
	KeywordsFile   = "keywords.json"
	TimelineFile   = "timeline.json"
	VideoFile      = "reel.mp4"
)

// artifactPath joins name onto the run's work directory.
func artifactPath(run *runs.Run, name string) string {
	return filepath.Join(run.WorkDir, name)
}

// requireInput fails with a validation error when a stage's input artifact
// was never recorded.
func requireInput(stageName, label, path string) error {
	if strings.TrimSpace(path) != "" {
		return nil
	}
	return services.Wrap(
		services.ErrValidation,
		stageName,
		"validate inputs",
		"no "+label+" recorded for this run; rerun the previous stage",
		nil,
	)
}
