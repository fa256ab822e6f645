package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/services"
)

// Word is a single transcribed token with millisecond offsets.
type Word struct {
	Text  string `json:"word"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// Transcript is the narration text with word-level timestamps.
type Transcript struct {
	Text  string `json:"text"`
	Words []Word `json:"words"`
}

// Duration returns the end offset of the final word.
func (t Transcript) Duration() int64 {
	if len(t.Words) == 0 {
		return 0
	}
	return t.Words[len(t.Words)-1].End
}

// Validate checks the timestamp invariants consumers rely on: non-negative
// offsets, start <= end, and words ordered by start.
func (t Transcript) Validate() error {
	var prev int64
	for i, w := range t.Words {
		if w.Start < 0 || w.End < 0 {
			return fmt.Errorf("word %d (%q) has negative timestamp", i, w.Text)
		}
		if w.Start > w.End {
			return fmt.Errorf("word %d (%q) starts after it ends (%d > %d)", i, w.Text, w.Start, w.End)
		}
		if i > 0 && w.Start < prev {
			return fmt.Errorf("word %d (%q) is out of order (%d < %d)", i, w.Text, w.Start, prev)
		}
		prev = w.Start
	}
	return nil
}

// Load reads and validates a transcript JSON file.
func Load(path string) (*Transcript, error) {
	var t Transcript
	if err := readJSON(path, "transcript", &t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcript", "validate", path, err)
	}
	return &t, nil
}

// Save writes the transcript as indented JSON.
func Save(path string, t *Transcript) error {
	if t == nil {
		return errors.New("transcript is nil")
	}
	if err := fileutil.WriteJSONAtomic(path, t); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

func readJSON(path, kind string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, kind, "read", path, err)
		}
		return services.Wrap(services.ErrTransient, kind, "read", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return services.Wrap(services.ErrValidation, kind, "decode", path, err)
	}
	return nil
}
