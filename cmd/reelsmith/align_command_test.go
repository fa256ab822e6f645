package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"reelsmith/internal/alignment"
	"reelsmith/internal/keywords"
	"reelsmith/internal/testsupport"
	"reelsmith/internal/transcript"
)

func writeAlignInputs(t *testing.T, dir string) (string, string) {
	t.Helper()
	tr := transcript.Transcript{
		Text: "Kubernetes is a container orchestrator.",
		Words: []transcript.Word{
			{Text: "Kubernetes", Start: 300, End: 900},
			{Text: "is", Start: 900, End: 1000},
			{Text: "a", Start: 1000, End: 1050},
			{Text: "container", Start: 1100, End: 1500},
			{Text: "orchestrator.", Start: 1500, End: 2200},
		},
	}
	tokens := []keywords.Token{
		{OrderID: 1, Type: keywords.MediaImage, Keyword: "Kubernetes"},
		{OrderID: 2, Type: keywords.MediaGIF, Keyword: "container orchestrator"},
		{OrderID: 3, Type: keywords.MediaText, Keyword: "nowhere"},
	}
	transcriptPath := filepath.Join(dir, "transcript.json")
	keywordsPath := filepath.Join(dir, "keywords.json")
	testsupport.WriteJSON(t, transcriptPath, tr)
	testsupport.WriteJSON(t, keywordsPath, tokens)
	return transcriptPath, keywordsPath
}

func TestAlignWritesTimeline(t *testing.T) {
	env := setupCLITestEnv(t)
	transcriptPath, keywordsPath := writeAlignInputs(t, env.baseDir)
	outPath := filepath.Join(env.baseDir, "timeline.json")

	out, _, err := runCLI(t, []string{
		"align", "--keywords", keywordsPath, "--transcript", transcriptPath,
		"--out", outPath, "--media-root", "/tmp/media",
	}, env.configPath)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	requireContains(t, out, "Aligned 2 of 3 keywords")

	segments, err := alignment.ReadTimeline(outPath)
	if err != nil {
		t.Fatalf("ReadTimeline: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %+v", segments)
	}
	if segments[0].Start != 0 || segments[0].End != 1099 || segments[1].Start != 1100 || segments[1].End != 2200 {
		t.Fatalf("unexpected windows %+v", segments)
	}
	if segments[1].Path != filepath.Join("/tmp/media", "gif", "2.mp4") {
		t.Fatalf("unexpected media path %q", segments[1].Path)
	}

	var raw []map[string]any
	testsupport.ReadJSON(t, outPath, &raw)
	for _, key := range []string{"order_id", "type", "keyword", "start", "end", "path"} {
		if _, ok := raw[0][key]; !ok {
			t.Fatalf("timeline entry missing %q: %v", key, raw[0])
		}
	}
}

func TestAlignPrintsJSONWithoutOut(t *testing.T) {
	env := setupCLITestEnv(t)
	transcriptPath, keywordsPath := writeAlignInputs(t, env.baseDir)

	out, _, err := runCLI(t, []string{"align", "-k", keywordsPath, "-t", transcriptPath}, env.configPath)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	var segments []alignment.Segment
	if err := json.Unmarshal([]byte(out), &segments); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(segments) != 2 || segments[0].Keyword != "Kubernetes" {
		t.Fatalf("unexpected segments %+v", segments)
	}
	if segments[0].Path != filepath.Join(env.cfg.Alignment.MediaRoot, "image", "1.jpg") {
		t.Fatalf("expected config media root, got %q", segments[0].Path)
	}
}

func TestAlignRequiresInputs(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"align", "--keywords", "k.json"}, env.configPath); err == nil {
		t.Fatal("expected missing --transcript to fail")
	}
}

func TestTimelineShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timeline.json")
	segments := []alignment.Segment{
		{OrderID: 1, Type: keywords.MediaImage, Keyword: "Kubernetes", Start: 0, End: 1099, Path: "media/image/1.jpg"},
		{OrderID: 2, Type: keywords.MediaGIF, Keyword: "container orchestrator", Start: 1100, End: 2200, Path: "media/gif/2.mp4"},
	}
	if err := alignment.WriteTimeline(path, segments); err != nil {
		t.Fatalf("WriteTimeline: %v", err)
	}

	out, _, err := runCLI(t, []string{"timeline", "show", path}, "")
	if err != nil {
		t.Fatalf("timeline show: %v", err)
	}
	requireContains(t, out, "container orchestrator")
	requireContains(t, out, "1.099s")
	requireContains(t, out, "2 segments, ending at 2.200s")

	out, _, err = runCLI(t, []string{"timeline", "show", "--json", path}, "")
	if err != nil {
		t.Fatalf("timeline show --json: %v", err)
	}
	var decoded []alignment.Segment
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 2 || decoded[1].End != 2200 {
		t.Fatalf("unexpected decoded timeline %+v", decoded)
	}
}

func TestTimelineShowMissingFile(t *testing.T) {
	if _, _, err := runCLI(t, []string{"timeline", "show", filepath.Join(t.TempDir(), "missing.json")}, ""); err == nil {
		t.Fatal("expected error for missing timeline")
	}
}

func TestSentencesCommand(t *testing.T) {
	dir := t.TempDir()
	transcriptPath, _ := writeAlignInputs(t, dir)
	outPath := filepath.Join(dir, "sentences.json")

	out, _, err := runCLI(t, []string{"sentences", "--transcript", transcriptPath, "--out", outPath}, "")
	if err != nil {
		t.Fatalf("sentences: %v", err)
	}
	requireContains(t, out, "Wrote 1 sentences")

	sentences, err := transcript.LoadSentences(outPath)
	if err != nil {
		t.Fatalf("LoadSentences: %v", err)
	}
	if len(sentences) != 1 || sentences[0].Text != "Kubernetes is a container orchestrator." {
		t.Fatalf("unexpected sentences %+v", sentences)
	}
}

func TestKeywordsCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"keywords\":[{\"order_id\":1,\"type\":\"image\",\"keyword\":\"Kubernetes\"}]}"}}]}`))
	}))
	t.Cleanup(srv.Close)

	env := setupCLITestEnv(t, testsupport.WithLLMEndpoint(srv.URL))
	sentencesPath := filepath.Join(env.baseDir, "sentences.json")
	if err := transcript.SaveSentences(sentencesPath, []transcript.Sentence{{ID: 1, Text: "Kubernetes is a container orchestrator."}}); err != nil {
		t.Fatalf("SaveSentences: %v", err)
	}
	outPath := filepath.Join(env.baseDir, "keywords.json")

	out, _, err := runCLI(t, []string{"keywords", "--sentences", sentencesPath, "--out", outPath}, env.configPath)
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	requireContains(t, out, "Extracted 1 keywords from 1 sentences")

	tokens, err := keywords.Load(outPath)
	if err != nil {
		t.Fatalf("keywords.Load: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != (keywords.Token{OrderID: 1, Type: keywords.MediaImage, Keyword: "Kubernetes"}) {
		t.Fatalf("unexpected tokens %+v", tokens)
	}
}
