package transcript

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"reelsmith/internal/fileutil"
)

// Sentence is one narration sentence with the time span of its words.
type Sentence struct {
	ID    int    `json:"id"`
	Text  string `json:"sentence"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// Sentences splits the transcript text after '.', '!' or '?' when followed by
// whitespace and assigns each sentence the next len(strings.Fields(sentence))
// words. IDs are 1-based. Sentences left without words (the text has more
// tokens than the word list) collapse to the transcript end.
func Sentences(t Transcript) []Sentence {
	parts := splitSentences(t.Text)
	out := make([]Sentence, 0, len(parts))
	cursor := 0
	for _, part := range parts {
		count := len(strings.Fields(part))
		s := Sentence{ID: len(out) + 1, Text: part}
		switch {
		case cursor < len(t.Words):
			s.Start = t.Words[cursor].Start
			last := min(cursor+count, len(t.Words)) - 1
			s.End = t.Words[last].End
		default:
			s.Start = t.Duration()
			s.End = s.Start
		}
		cursor += count
		out = append(out, s)
	}
	return out
}

func splitSentences(text string) []string {
	var (
		parts []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		parts = appendSentence(parts, string(runes[start:i+1]))
		start = j
		i = j - 1
	}
	if start < len(runes) {
		parts = appendSentence(parts, string(runes[start:]))
	}
	return parts
}

func appendSentence(parts []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return parts
	}
	return append(parts, s)
}

// LoadSentences reads a sentence list written by SaveSentences.
func LoadSentences(path string) ([]Sentence, error) {
	var sentences []Sentence
	if err := readJSON(path, "sentences", &sentences); err != nil {
		return nil, err
	}
	return sentences, nil
}

// SaveSentences writes sentences as indented JSON.
func SaveSentences(path string, sentences []Sentence) error {
	if sentences == nil {
		return errors.New("sentences are nil")
	}
	if err := fileutil.WriteJSONAtomic(path, sentences); err != nil {
		return fmt.Errorf("save sentences: %w", err)
	}
	return nil
}
