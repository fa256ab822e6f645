package preflight

import (
	"context"
	"fmt"
	"strings"

	"reelsmith/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that gate a run: workspace and log directory
// access, LLM reachability, the speech credential and the transcription
// language. Media providers are
// reported but never fail since acquisition is best effort.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Workspace directory", cfg.Paths.WorkspaceDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckLLM(ctx, cfg),
		CheckCredential("ElevenLabs", cfg.Speech.APIKey),
		CheckTranscriptionLanguage(cfg),
	}
	results = append(results, CheckMediaProviders(cfg)...)
	return results
}

// Failures formats every failed result as "name: detail".
func Failures(results []Result) []string {
	var out []string
	for _, r := range results {
		if !r.Passed {
			out = append(out, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	return out
}

// CheckCredential passes when value is non-empty.
func CheckCredential(name, value string) Result {
	if strings.TrimSpace(value) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	return Result{Name: name, Passed: true, Detail: "API key set"}
}

// CheckMediaProviders describes which stock media providers are usable.
func CheckMediaProviders(cfg *config.Config) []Result {
	describe := func(name string, configured bool) Result {
		if configured {
			return Result{Name: name, Passed: true, Detail: "configured"}
		}
		return Result{Name: name, Passed: true, Detail: "not configured (segments fall back to the background)"}
	}
	return []Result{
		describe("Unsplash", cfg.Media.UnsplashAccessKey != ""),
		describe("Google image search", cfg.Media.GoogleAPIKey != "" && cfg.Media.GoogleSearchEngineID != ""),
		describe("Tenor", cfg.Media.TenorAPIKey != ""),
	}
}
