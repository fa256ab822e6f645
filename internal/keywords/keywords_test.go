package keywords

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelsmith/internal/services"
	"reelsmith/internal/transcript"
)

type scriptedClient struct {
	replies []string
	errs    []error
	prompts []string
}

func (c *scriptedClient) CompleteJSON(_ context.Context, _, user string) (string, error) {
	i := len(c.prompts)
	c.prompts = append(c.prompts, user)
	var err error
	if i < len(c.errs) {
		err = c.errs[i]
	}
	if i < len(c.replies) {
		return c.replies[i], err
	}
	return "", err
}

func (c *scriptedClient) HealthCheck(context.Context) error { return nil }

func sentences(texts ...string) []transcript.Sentence {
	out := make([]transcript.Sentence, 0, len(texts))
	for i, text := range texts {
		out = append(out, transcript.Sentence{ID: i + 1, Text: text})
	}
	return out
}

func TestExtractNumbersGlobally(t *testing.T) {
	client := &scriptedClient{replies: []string{
		`{"keywords":[{"order_id":2,"type":"gif","keyword":"explodes"},{"order_id":1,"type":"image","keyword":"Docker"}]}`,
		`{"keywords":[{"order_id":1,"type":"text","keyword":"100 percent"}]}`,
	}}
	ex := NewExtractor(client, 0, nil)
	tokens, err := ex.Extract(context.Background(), sentences("Docker explodes.", "It is 100 percent fine."))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []Token{
		{OrderID: 1, Type: MediaImage, Keyword: "Docker"},
		{OrderID: 2, Type: MediaGIF, Keyword: "explodes"},
		{OrderID: 3, Type: MediaText, Keyword: "100 percent"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %+v", len(want), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d: expected %+v, got %+v", i, want[i], tokens[i])
		}
	}
	if !strings.Contains(client.prompts[0], "Docker explodes.") {
		t.Fatalf("expected sentence in prompt, got %q", client.prompts[0])
	}
}

func TestExtractFallsBackToSentence(t *testing.T) {
	client := &scriptedClient{
		replies: []string{"", `{"keywords":[]}`, "nonsense"},
		errs:    []error{errors.New("upstream down")},
	}
	ex := NewExtractor(client, 0, nil)
	tokens, err := ex.Extract(context.Background(), sentences("First one.", "Second one.", "Third one."))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("expected one fallback token per sentence, got %+v", tokens)
	}
	for i, tok := range tokens {
		if tok.Type != MediaText || tok.OrderID != i+1 {
			t.Fatalf("unexpected fallback token %+v", tok)
		}
	}
	if tokens[1].Keyword != "Second one." {
		t.Fatalf("expected whole sentence keyword, got %q", tokens[1].Keyword)
	}
}

func TestExtractWaitsBetweenRequests(t *testing.T) {
	client := &scriptedClient{replies: []string{`{"keywords":[]}`, `{"keywords":[]}`}}
	ex := NewExtractor(client, 250*time.Millisecond, nil)
	var waits []time.Duration
	ex.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	if _, err := ex.Extract(context.Background(), sentences("One.", "Two.")); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(waits) != 1 || waits[0] != 250*time.Millisecond {
		t.Fatalf("expected one wait between two sentences, got %v", waits)
	}
}

func TestExtractHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := NewExtractor(&scriptedClient{}, 0, nil)
	if _, err := ex.Extract(ctx, sentences("One.")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDedupe(t *testing.T) {
	in := []Token{
		{OrderID: 1, Type: MediaText, Keyword: "Rust"},
		{OrderID: 2, Type: MediaGIF, Keyword: "borrow checker"},
		{OrderID: 3, Type: MediaImage, Keyword: "rust"},
		{OrderID: 4, Type: MediaText, Keyword: "  "},
		{OrderID: 5, Type: MediaText, Keyword: "borrow checker"},
	}
	got := Dedupe(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 tokens, got %+v", got)
	}
	if got[0].Keyword != "Rust" || got[0].Type != MediaImage || got[0].OrderID != 1 {
		t.Fatalf("expected first occurrence upgraded to image, got %+v", got[0])
	}
	if got[1].Type != MediaGIF {
		t.Fatalf("expected gif kept over later text, got %+v", got[1])
	}
}

func TestParseMediaType(t *testing.T) {
	if typ, ok := ParseMediaType(" GIF "); !ok || typ != MediaGIF {
		t.Fatalf("expected gif, got %q %v", typ, ok)
	}
	if _, ok := ParseMediaType("video"); ok {
		t.Fatal("expected unknown type to be rejected")
	}
}

func TestLoadValidatesOrderIDs(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "keywords.json")
	if err := Save(good, []Token{{OrderID: 1, Type: MediaImage, Keyword: "cat"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tokens, err := Load(good)
	if err != nil || len(tokens) != 1 || tokens[0].Keyword != "cat" {
		t.Fatalf("Load: %+v %v", tokens, err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"order_id":0,"type":"text","keyword":"x"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(bad); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	dup := filepath.Join(dir, "dup.json")
	if err := os.WriteFile(dup, []byte(`[{"order_id":1,"type":"image","keyword":"cat"},{"order_id":1,"type":"image","keyword":"dog"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(dup); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for duplicate order_id, got %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
