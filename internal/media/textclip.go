package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const minClipMillis = 500

// TextClipConfig controls caption card rendering.
type TextClipConfig struct {
	FFmpeg          string
	Width           int
	Height          int
	FPS             int
	MinFontSize     int
	FontColor       string
	BackgroundColor string
}

// TextClipper renders caption cards with ffmpeg's drawtext filter.
type TextClipper struct {
	cfg TextClipConfig
	run func(ctx context.Context, name string, args ...string) error
}

// NewTextClipper builds a clipper that shells out to cfg.FFmpeg.
func NewTextClipper(cfg TextClipConfig) *TextClipper {
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = "ffmpeg"
	}
	return &TextClipper{cfg: cfg, run: runCommand}
}

// Caption title-cases a keyword for display.
func Caption(keyword string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(keyword), " "))
}

// RevealMillis is the fade-in length for a clip: one fifth of its duration.
func RevealMillis(durationMillis int64) int64 {
	return durationMillis / 5
}

// Render writes an MP4 caption card for keyword lasting durationMillis.
func (t *TextClipper) Render(ctx context.Context, keyword string, durationMillis int64, dest string) error {
	caption := Caption(keyword)
	if caption == "" {
		return fmt.Errorf("text clip: empty caption")
	}
	durationMillis = max(durationMillis, minClipMillis)

	size := fontSize(len([]rune(caption)), t.cfg.MinFontSize)
	wrapped := wrapCaption(caption, charsPerLine(t.cfg.Width, size))
	textFile := dest + ".caption.txt"
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("text clip: create directory: %w", err)
	}
	if err := os.WriteFile(textFile, []byte(wrapped), 0o644); err != nil {
		return fmt.Errorf("text clip: write caption: %w", err)
	}
	defer os.Remove(textFile)

	args := t.buildArgs(textFile, size, durationMillis, dest)
	if err := t.run(ctx, t.cfg.FFmpeg, args...); err != nil {
		return fmt.Errorf("text clip: %w", err)
	}
	return nil
}

func (t *TextClipper) buildArgs(textFile string, size int, durationMillis int64, dest string) []string {
	seconds := formatSeconds(durationMillis)
	reveal := formatSeconds(max(RevealMillis(durationMillis), 1))
	source := fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s", t.cfg.BackgroundColor, t.cfg.Width, t.cfg.Height, t.cfg.FPS, seconds)
	drawtext := strings.Join([]string{
		"drawtext=textfile='" + escapeFilterValue(textFile) + "'",
		"fontcolor=" + t.cfg.FontColor,
		"fontsize=" + strconv.Itoa(size),
		"line_spacing=" + strconv.Itoa(size/6),
		"x=(w-text_w)/2",
		"y=(h-text_h)/2",
		fmt.Sprintf("alpha='if(lt(t,%s),t/%s,1)'", reveal, reveal),
	}, ":")
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "lavfi",
		"-i", source,
		"-vf", drawtext,
		"-t", seconds,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-an",
		dest,
	}
}

// fontSize shrinks the type as captions grow, never going below floor.
func fontSize(length, floor int) int {
	var size int
	switch {
	case length <= 3:
		size = 300
	case length <= 5:
		size = 250
	case length <= 7:
		size = 200
	case length <= 10:
		size = 150
	case length <= 15:
		size = 120
	default:
		size = 100
	}
	return max(size, floor)
}

// charsPerLine estimates how many glyphs fit in 90% of the frame width.
func charsPerLine(width, size int) int {
	if size <= 0 {
		return 1
	}
	return max(int(float64(width)*0.9/(float64(size)*0.6)), 1)
}

func wrapCaption(caption string, limit int) string {
	var (
		lines   []string
		current []string
		length  int
	)
	for _, word := range strings.Fields(caption) {
		wl := len([]rune(word))
		if len(current) > 0 && length+1+wl > limit {
			lines = append(lines, strings.Join(current, " "))
			current, length = nil, 0
		}
		if len(current) > 0 {
			length++
		}
		current = append(current, word)
		length += wl
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return strings.Join(lines, "\n")
}

func formatSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}

func escapeFilterValue(value string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `'\''`, `:`, `\:`).Replace(value)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
