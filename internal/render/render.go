package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelsmith/internal/alignment"
	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/services"
	"reelsmith/internal/services/drapto"
)

const stageName = "rendering"

// Result describes a finished composition.
type Result struct {
	VideoPath      string
	ArchivePath    string
	DurationMillis int64
	Clips          int
	Skipped        int
}

// Renderer composes reels with ffmpeg.
type Renderer struct {
	canvas  Canvas
	ffmpeg  string
	ffprobe string
	archive drapto.Client
	logger  *slog.Logger

	run   func(ctx context.Context, name string, args ...string) error
	probe func(ctx context.Context, binary, path string) (int64, error)
}

// NewRenderer builds a renderer from configuration. The Drapto archive step
// is enabled by render.archive.
func NewRenderer(cfg *config.Config, logger *slog.Logger) *Renderer {
	r := &Renderer{
		canvas: Canvas{
			Width:  cfg.Render.Width,
			Height: cfg.Render.Height,
			FPS:    cfg.Render.FPS,
			CRF:    cfg.Render.CRF,
			Preset: cfg.Render.Preset,
		},
		ffmpeg:  cfg.FFmpegBinary(),
		ffprobe: cfg.FFprobeBinary(),
		logger:  logging.NewComponentLogger(logger, "renderer"),
		run:     runCommand,
		probe:   ffprobe.AudioMillis,
	}
	if cfg.Render.Archive {
		r.archive = drapto.New(cfg.Render.ArchiveBinary)
	}
	return r
}

// Render composes segments over the narration at audioPath into dest.
// Segments whose media file is missing are skipped so the canvas shows
// through.
func (r *Renderer) Render(ctx context.Context, segments []alignment.Segment, audioPath, dest string) (Result, error) {
	audioMillis, err := r.probe(ctx, r.ffprobe, audioPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "probe narration", "could not read audio duration", err)
	}

	planned := Plan(segments, audioMillis)
	clips := make([]Clip, 0, len(planned))
	skipped := len(segments) - len(planned)
	for _, clip := range planned {
		if info, statErr := os.Stat(clip.Path); statErr != nil || info.Size() == 0 {
			skipped++
			r.logger.Debug("clip media missing; skipping",
				logging.Int("order_id", clip.OrderID),
				logging.String("path", clip.Path),
			)
			continue
		}
		clips = append(clips, clip)
	}
	if skipped > 0 {
		logging.WarnWithContext(r.logger, "some segments have no clip", "render_clips_skipped",
			logging.Int("skipped", skipped),
			logging.Int("clips", len(clips)),
			logging.String(logging.FieldImpact, "black background shows for skipped segments"),
			logging.String(logging.FieldErrorHint, "rerun acquisition or check media provider credentials"),
		)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, stageName, "create output dir", "", err)
	}
	args := buildArgs(r.canvas, clips, audioPath, audioMillis, dest)
	r.logger.Info("composing reel",
		logging.Int("clips", len(clips)),
		logging.Int64("duration_ms", audioMillis),
		logging.String("output", dest),
	)
	if err := r.run(ctx, r.ffmpeg, args...); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageName, "ffmpeg", "composition failed", err)
	}

	result := Result{
		VideoPath:      dest,
		DurationMillis: audioMillis,
		Clips:          len(clips),
		Skipped:        skipped,
	}
	if r.archive == nil {
		return result, nil
	}

	archiveDir := filepath.Join(filepath.Dir(dest), "archive")
	archivePath, err := r.archive.Encode(ctx, dest, archiveDir, func(update drapto.ProgressUpdate) {
		if update.Warning != "" {
			r.logger.Warn("drapto warning", logging.String("warning", update.Warning))
			return
		}
		r.logger.Debug("archive progress",
			logging.String("stage", update.Stage),
			logging.Float64("percent", update.Percent),
		)
	})
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, stageName, "archive", "drapto encode failed", err)
	}
	result.ArchivePath = archivePath
	r.logger.Info("archive complete", logging.String("archive_path", archivePath))
	return result, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
