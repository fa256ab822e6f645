package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"reelsmith/internal/config"
)

// ConfigOption adjusts a test configuration after defaults are applied.
type ConfigOption func(t testing.TB, cfg *config.Config)

// NewConfig returns config.Default with every path under a fresh temp
// directory, placeholder credentials and no keyword request delay.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = filepath.Join(root, "runs")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.WhisperXCacheDir = filepath.Join(root, "cache", "whisperx")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.LLM.APIKey = "test"
	cfg.Speech.APIKey = "test"
	cfg.Keywords.RequestDelayMS = 0

	for _, opt := range opts {
		opt(t, &cfg)
	}
	return &cfg
}

// BaseDir is the temp root NewConfig placed the config's directories under.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkspaceDir)
}

// WithLLMEndpoint routes the OpenRouter client to url.
func WithLLMEndpoint(url string) ConfigOption {
	return func(_ testing.TB, cfg *config.Config) {
		cfg.LLM.Provider = config.ProviderOpenRouter
		cfg.LLM.BaseURL = url
	}
}

// WithStubbedBinaries puts executables that exit 0 first on PATH for the
// duration of the test. Without names, ffmpeg, ffprobe and uvx are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	if len(names) == 0 {
		names = []string{"ffmpeg", "ffprobe", "uvx"}
	}
	return func(t testing.TB, cfg *config.Config) {
		t.Helper()
		bin := filepath.Join(BaseDir(cfg), "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			t.Fatalf("create stub dir: %v", err)
		}
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}
