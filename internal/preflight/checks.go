package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"reelsmith/internal/config"
	"reelsmith/internal/deps"
	"reelsmith/internal/generate"
	"reelsmith/internal/language"
	"reelsmith/internal/services/whisperx"
)

// llmCheckTimeout bounds the LLM reachability probe.
const llmCheckTimeout = 30 * time.Second

// CheckLLM sends a minimal completion to the configured backend.
func CheckLLM(ctx context.Context, cfg *config.Config) Result {
	name := fmt.Sprintf("LLM (%s)", cfg.LLM.Provider)
	if cfg.LLM.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	client, err := generate.New(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: describeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckTranscriptionLanguage fails when WhisperX cannot produce word
// timestamps for the configured language.
func CheckTranscriptionLanguage(cfg *config.Config) Result {
	const name = "Transcription language"
	code := cfg.Transcription.Language
	label := fmt.Sprintf("%s (%s)", language.DisplayName(code), code)
	if !language.Alignable(code) {
		return Result{Name: name, Detail: label + " has no word alignment model"}
	}
	return Result{Name: name, Passed: true, Detail: label + ", word alignment available"}
}

// CheckDirectoryAccess passes when path is a directory the process can
// read, write and traverse.
func CheckDirectoryAccess(name, path string) Result {
	if err := accessibleDir(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s: %v", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
}

func accessibleDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errors.New("does not exist")
	case err != nil:
		return err
	case !info.IsDir():
		return errors.New("not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("insufficient permissions: %w", err)
	}
	return nil
}

// CheckSystemDeps evaluates the external binaries the pipeline shells out to.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.PipelineRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary(), whisperx.UVXCommand))
}

// describeLLMError shortens timeouts to a readable verdict.
func describeLLMError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "no response within " + llmCheckTimeout.String()
	case errors.As(err, &netErr) && netErr.Timeout():
		return "connection timed out"
	}
	return err.Error()
}
