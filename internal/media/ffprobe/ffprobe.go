package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoAudio is returned by AudioMillis for files without an audio stream.
var ErrNoAudio = errors.New("no audio stream")

// Media is the subset of an ffprobe report the pipeline uses.
type Media struct {
	Format string
	Millis int64
	Audio  int
	Video  int
}

// report mirrors `ffprobe -of json -show_format -show_streams`.
type report struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

// Probe runs binary (ffprobe when blank) against path.
func Probe(ctx context.Context, binary, path string) (Media, error) {
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Media{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path) //nolint:gosec
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Media{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Media{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parse(out)
}

// AudioMillis probes path and returns its duration rounded to the nearest
// millisecond. The file must carry audio and a positive duration.
func AudioMillis(ctx context.Context, binary, path string) (int64, error) {
	media, err := Probe(ctx, binary, path)
	if err != nil {
		return 0, err
	}
	if media.Audio == 0 {
		return 0, fmt.Errorf("ffprobe %s: %w", path, ErrNoAudio)
	}
	if media.Millis <= 0 {
		return 0, fmt.Errorf("ffprobe %s: no usable duration", path)
	}
	return media.Millis, nil
}

func parse(data []byte) (Media, error) {
	var r report
	if err := json.Unmarshal(data, &r); err != nil {
		return Media{}, fmt.Errorf("decode ffprobe report: %w", err)
	}
	media := Media{Format: r.Format.FormatName}

	// The container duration wins; otherwise take the longest stream.
	dur, fromFormat := seconds(r.Format.Duration)
	for _, s := range r.Streams {
		switch strings.ToLower(s.CodecType) {
		case "audio":
			media.Audio++
		case "video":
			media.Video++
		}
		if d, ok := seconds(s.Duration); ok && !fromFormat && d > dur {
			dur = d
		}
	}
	media.Millis = int64(math.Round(dur * 1000))
	return media, nil
}

// seconds parses an ffprobe duration field. "N/A" and blanks are invalid.
func seconds(value string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
