package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reelsmith/internal/testsupport"
)

func okLLMServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPreflightPasses(t *testing.T) {
	srv := okLLMServer(t)
	env := setupCLITestEnv(t, testsupport.WithLLMEndpoint(srv.URL), testsupport.WithStubbedBinaries())

	out, _, err := runCLI(t, []string{"preflight"}, env.configPath)
	if err != nil {
		t.Fatalf("preflight: %v\n%s", err, out)
	}
	requireContains(t, out, "== Services ==")
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "All checks passed")
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI colors for non-terminal output, got %q", out)
	}
}

func TestPreflightReportsMissingCredential(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "")
	srv := okLLMServer(t)
	env := setupCLITestEnv(t, testsupport.WithLLMEndpoint(srv.URL), testsupport.WithStubbedBinaries())
	env.cfg.Speech.APIKey = ""
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"preflight"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "ElevenLabs") {
		t.Fatalf("expected ElevenLabs failure, got %v", err)
	}
	requireContains(t, out, "[ERROR] API key missing")
}

func TestFormatCheck(t *testing.T) {
	plain := formatCheck("ffmpeg", verdictPass, "/usr/bin/ffmpeg", false)
	if !strings.Contains(plain, "ffmpeg:") || !strings.Contains(plain, "[OK] /usr/bin/ffmpeg") {
		t.Fatalf("unexpected plain line %q", plain)
	}
	if strings.HasSuffix(formatCheck("uvx", verdictWarn, "  ", false), " ") {
		t.Fatal("blank detail should not leave trailing space")
	}
	if colored := formatCheck("uvx", verdictWarn, "", true); !strings.Contains(colored, "[WARN]") {
		t.Fatalf("expected warn line, got %q", colored)
	}
}
