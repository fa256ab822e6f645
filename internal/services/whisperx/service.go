package whisperx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelsmith/internal/transcript"
)

const (
	// UVXCommand launches WhisperX without a managed Python environment.
	UVXCommand = "uvx"
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "large-v3"

	outputSubdir = "whisperx"
	wavName      = "narration.wav"
)

// Config selects the WhisperX model and runtime.
type Config struct {
	Model       string
	CUDAEnabled bool
	VADMethod   string
	HFToken     string
	// Language is an ISO 639-1 code; empty lets WhisperX detect it.
	Language string
	// ModelDir caches downloaded weights between runs.
	ModelDir     string
	FFmpegBinary string
}

// Runner executes an external command to completion.
type Runner func(ctx context.Context, name string, args ...string) error

// Option configures a Service.
type Option func(*Service)

// WithRunner replaces command execution, for tests.
func WithRunner(run Runner) Option {
	return func(s *Service) {
		if run != nil {
			s.run = run
		}
	}
}

// Service transcribes narration into word-timed transcripts.
type Service struct {
	cfg Config
	run Runner
}

func NewService(cfg Config, opts ...Option) *Service {
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	s := &Service{cfg: cfg, run: execRunner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transcribe converts audioPath to 16kHz mono WAV under workDir, runs
// WhisperX with word alignment and returns the words in milliseconds.
func (s *Service) Transcribe(ctx context.Context, audioPath, workDir string) (*transcript.Transcript, error) {
	if audioPath == "" {
		return nil, errors.New("transcribe: audio path required")
	}
	if workDir == "" {
		workDir = filepath.Dir(audioPath)
	}
	outDir := filepath.Join(workDir, outputSubdir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("transcribe: create output dir: %w", err)
	}

	wav := filepath.Join(outDir, wavName)
	if err := s.run(ctx, s.cfg.FFmpegBinary, extractArgs(audioPath, wav)...); err != nil {
		return nil, fmt.Errorf("transcribe: extract audio: %w", err)
	}
	if err := s.run(ctx, UVXCommand, s.buildArgs(wav, outDir)...); err != nil {
		return nil, fmt.Errorf("whisperx: %w", err)
	}

	result := filepath.Join(outDir, strings.TrimSuffix(wavName, filepath.Ext(wavName))+".json")
	segments, err := LoadSegments(result)
	if err != nil {
		return nil, fmt.Errorf("whisperx: %w", err)
	}
	t := ToTranscript(segments)
	if len(t.Words) == 0 {
		return nil, errors.New("whisperx: no aligned words in output")
	}
	return &t, nil
}

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	// torch >= 2.6 defaults torch.load to weights_only, which pyannote
	// checkpoints cannot satisfy.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
