package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail for missing dir, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func llmServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckLLM_OK(t *testing.T) {
	srv := llmServer(t, http.StatusOK)
	cfg := testsupport.NewConfig(t, testsupport.WithLLMEndpoint(srv.URL))
	if result := CheckLLM(context.Background(), cfg); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckLLM_MissingKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = ""
	result := CheckLLM(context.Background(), cfg)
	if result.Passed || result.Detail != "API key missing" {
		t.Fatalf("expected missing key failure, got %+v", result)
	}
}

func TestCheckLLM_BadKey(t *testing.T) {
	srv := llmServer(t, http.StatusOK)
	cfg := testsupport.NewConfig(t, testsupport.WithLLMEndpoint(srv.URL))
	cfg.LLM.APIKey = "wrong"
	if result := CheckLLM(context.Background(), cfg); result.Passed {
		t.Fatal("expected failure for rejected key")
	}
}

func TestRunAllReportsFailures(t *testing.T) {
	srv := llmServer(t, http.StatusOK)
	cfg := testsupport.NewConfig(t, testsupport.WithLLMEndpoint(srv.URL))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	cfg.Speech.APIKey = ""

	results := RunAll(context.Background(), cfg)
	failures := Failures(results)
	if len(failures) != 1 || !strings.HasPrefix(failures[0], "ElevenLabs:") {
		t.Fatalf("expected only the speech key to fail, got %v", failures)
	}
	var sawTenor bool
	for _, r := range results {
		if r.Name == "Tenor" {
			sawTenor = true
			if !r.Passed {
				t.Fatal("unconfigured media providers must not fail preflight")
			}
		}
	}
	if !sawTenor {
		t.Fatal("expected media provider results")
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	for _, status := range CheckSystemDeps(cfg) {
		if !status.Available {
			t.Fatalf("expected stubbed %s to be available: %s", status.Name, status.Detail)
		}
	}
}

func TestCheckTranscriptionLanguage(t *testing.T) {
	cfg := config.Default()
	if got := CheckTranscriptionLanguage(&cfg); !got.Passed || !strings.Contains(got.Detail, "English (en)") {
		t.Fatalf("unexpected result for en: %+v", got)
	}
	cfg.Transcription.Language = "sw"
	if got := CheckTranscriptionLanguage(&cfg); got.Passed {
		t.Fatalf("expected Swahili to fail, got %+v", got)
	}
}
