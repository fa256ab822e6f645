package whisperx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"reelsmith/internal/transcript"
)

// Word represents a single word with timing from WhisperX output. Alignment
// leaves Start/End unset for tokens it cannot place, such as bare numerals.
type Word struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

// ToTranscript flattens segments into a millisecond word list. A word without
// a start is placed at the previous word's start or the segment start,
// whichever is later; a word without an end has zero width. Starts never
// decrease. Blank words are dropped.
func ToTranscript(segments []Segment) transcript.Transcript {
	var (
		texts []string
		words []transcript.Word
		prev  int64
	)
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			texts = append(texts, text)
		}
		segStart := max(toMillis(seg.Start), prev)
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			start := max(prev, segStart)
			if w.Start != nil {
				start = max(toMillis(*w.Start), prev)
			}
			end := start
			if w.End != nil {
				end = max(toMillis(*w.End), start)
			}
			words = append(words, transcript.Word{Text: text, Start: start, End: end})
			prev = start
		}
	}
	if words == nil {
		words = []transcript.Word{}
	}
	return transcript.Transcript{Text: strings.Join(texts, " "), Words: words}
}

func toMillis(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	return int64(seconds*1000 + 0.5)
}
