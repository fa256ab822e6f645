package alignment

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelsmith/internal/transcript"
)

// trailingPunctuation is stripped from the end of each word before comparison.
const trailingPunctuation = ".,?!:;'\""

// CleanWord lower-cases a word, trims surrounding whitespace and strips
// trailing punctuation. Whitespace is trimmed again afterwards so "fast! "
// and "fast !" both clean to "fast".
func CleanWord(word string) string {
	return cleanLowered(lower(word))
}

func cleanLowered(word string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(word), trailingPunctuation))
}

// lower builds a fresh Caser per call; Casers carry state and are not safe
// for concurrent use.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// WordsMatch reports whether two words match after cleaning: they are equal,
// or either is a non-empty prefix of the other ("run" matches "running").
func WordsMatch(a, b string) bool {
	return cleanedMatch(CleanWord(a), CleanWord(b))
}

func cleanedMatch(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

// WordIndex is a normalized view over transcript words. Positions line up with
// the source slice; words that clean to nothing stay as empty strings.
type WordIndex struct {
	words []transcript.Word
	clean []string
}

// NewWordIndex normalizes words once for repeated phrase searches.
func NewWordIndex(words []transcript.Word) *WordIndex {
	caser := cases.Lower(language.Und)
	clean := make([]string, len(words))
	for i, w := range words {
		clean[i] = cleanLowered(caser.String(w.Text))
	}
	return &WordIndex{words: words, clean: clean}
}

// Len returns the number of indexed words.
func (ix *WordIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.words)
}

// Word returns the source word at position i.
func (ix *WordIndex) Word(i int) transcript.Word {
	return ix.words[i]
}

// Normalized returns the cleaned text at position i.
func (ix *WordIndex) Normalized(i int) string {
	return ix.clean[i]
}

func (ix *WordIndex) rangeAt(i int) Range {
	return Range{Start: ix.words[i].Start, End: ix.words[i].End}
}
