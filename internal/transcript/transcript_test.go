package transcript_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/services"
	"reelsmith/internal/transcript"
)

func sample() transcript.Transcript {
	return transcript.Transcript{
		Text: "Go is fast. Really fast!   Is it?",
		Words: []transcript.Word{
			{Text: "Go", Start: 0, End: 200},
			{Text: "is", Start: 200, End: 300},
			{Text: "fast.", Start: 300, End: 600},
			{Text: "Really", Start: 800, End: 1000},
			{Text: "fast!", Start: 1000, End: 1400},
			{Text: "Is", Start: 1600, End: 1700},
			{Text: "it?", Start: 1700, End: 1900},
		},
	}
}

func TestSentencesMapWordsByCount(t *testing.T) {
	got := transcript.Sentences(sample())
	want := []transcript.Sentence{
		{ID: 1, Text: "Go is fast.", Start: 0, End: 600},
		{ID: 2, Text: "Really fast!", Start: 800, End: 1400},
		{ID: 3, Text: "Is it?", Start: 1600, End: 1900},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %#v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestSentencesKeepsPunctuationWithoutTrailingSpace(t *testing.T) {
	tr := transcript.Transcript{
		Text:  "Version 1.22 shipped. Done",
		Words: []transcript.Word{{Text: "Version", Start: 0, End: 100}, {Text: "1.22", Start: 100, End: 200}, {Text: "shipped.", Start: 200, End: 300}, {Text: "Done", Start: 400, End: 500}},
	}
	got := transcript.Sentences(tr)
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %#v", got)
	}
	if got[0].Text != "Version 1.22 shipped." || got[0].End != 300 {
		t.Fatalf("unexpected first sentence %#v", got[0])
	}
	if got[1].Text != "Done" || got[1].Start != 400 {
		t.Fatalf("unexpected second sentence %#v", got[1])
	}
}

func TestSentencesBeyondWordsCollapseToEnd(t *testing.T) {
	tr := transcript.Transcript{
		Text:  "One two. Three four.",
		Words: []transcript.Word{{Text: "One", Start: 0, End: 100}, {Text: "two.", Start: 100, End: 200}},
	}
	got := transcript.Sentences(tr)
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %#v", got)
	}
	if got[1].Start != 200 || got[1].End != 200 {
		t.Fatalf("expected collapsed sentence at 200, got %#v", got[1])
	}

	if got := transcript.Sentences(transcript.Transcript{}); len(got) != 0 {
		t.Fatalf("expected no sentences for empty text, got %#v", got)
	}
}

func TestSaveLoadRoundTripAndValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.json")
	tr := sample()
	if err := transcript.Save(path, &tr); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := transcript.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Words) != len(tr.Words) || loaded.Duration() != 1900 {
		t.Fatalf("unexpected loaded transcript %#v", loaded)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"word": "Go"`) {
		t.Fatalf("expected word key in JSON, got %s", raw)
	}

	if _, err := transcript.Load(filepath.Join(dir, "missing.json")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := transcript.Load(bad); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for malformed JSON, got %v", err)
	}

	unordered := filepath.Join(dir, "unordered.json")
	if err := os.WriteFile(unordered, []byte(`{"text":"a b","words":[{"word":"a","start":500,"end":600},{"word":"b","start":100,"end":200}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := transcript.Load(unordered); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unordered words, got %v", err)
	}
}

func TestValidateRejectsInvertedWord(t *testing.T) {
	tr := transcript.Transcript{Words: []transcript.Word{{Text: "x", Start: 300, End: 100}}}
	if err := tr.Validate(); err == nil {
		t.Fatal("expected error for start > end")
	}
}

func TestSentencesFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentences.json")
	sentences := transcript.Sentences(sample())
	if err := transcript.SaveSentences(path, sentences); err != nil {
		t.Fatalf("SaveSentences: %v", err)
	}
	loaded, err := transcript.LoadSentences(path)
	if err != nil {
		t.Fatalf("LoadSentences: %v", err)
	}
	if len(loaded) != 3 || loaded[2].Text != "Is it?" {
		t.Fatalf("unexpected sentences %#v", loaded)
	}
}
