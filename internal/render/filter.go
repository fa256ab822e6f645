package render

import (
	"fmt"
	"strconv"
	"strings"

	"reelsmith/internal/keywords"
)

// Canvas describes the output frame and encoder settings.
type Canvas struct {
	Width  int
	Height int
	FPS    int
	CRF    int
	Preset string
}

// clipMargin is the vertical space left around each scaled clip.
const clipMargin = 40

// buildArgs assembles the ffmpeg invocation for clips over a black canvas
// lasting totalMillis, with audioPath as the soundtrack.
func buildArgs(canvas Canvas, clips []Clip, audioPath string, totalMillis int64, dest string) []string {
	total := seconds(totalMillis)
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=%dx%d:r=%d:d=%s", canvas.Width, canvas.Height, canvas.FPS, total),
	}
	for _, clip := range clips {
		args = append(args, inputArgs(clip)...)
	}
	audioIndex := len(clips) + 1
	args = append(args, "-i", audioPath)

	graph, out := filterGraph(canvas, clips)
	args = append(args,
		"-filter_complex", graph,
		"-map", "["+out+"]",
		"-map", strconv.Itoa(audioIndex)+":a:0",
		"-c:v", "libx264",
		"-preset", canvas.Preset,
		"-crf", strconv.Itoa(canvas.CRF),
		"-r", strconv.Itoa(canvas.FPS),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", total,
		"-movflags", "+faststart",
		dest,
	)
	return args
}

func inputArgs(clip Clip) []string {
	d := seconds(clip.Duration())
	switch clip.Type {
	case keywords.MediaImage:
		return []string{"-loop", "1", "-t", d, "-i", clip.Path}
	case keywords.MediaGIF:
		return []string{"-stream_loop", "-1", "-t", d, "-i", clip.Path}
	default:
		return []string{"-i", clip.Path}
	}
}

// filterGraph chains one overlay per clip onto the canvas and returns the
// graph with the label of its final video pad.
func filterGraph(canvas Canvas, clips []Clip) (string, string) {
	if len(clips) == 0 {
		return "[0:v]null[out]", "out"
	}
	var parts []string
	base := "0:v"
	for i, clip := range clips {
		input := i + 1
		start := seconds(clip.Start)
		end := seconds(clip.End)
		d := seconds(clip.Duration())

		chain := []string{}
		if clip.Type == keywords.MediaText {
			chain = append(chain, "tpad=stop_mode=clone:stop_duration="+d)
		}
		chain = append(chain,
			"trim=duration="+d,
			"setpts=PTS-STARTPTS+"+start+"/TB",
			fmt.Sprintf("scale=-2:%d", canvas.Height-clipMargin),
			"setsar=1",
		)
		clipLabel := fmt.Sprintf("c%d", input)
		parts = append(parts, fmt.Sprintf("[%d:v]%s[%s]", input, strings.Join(chain, ","), clipLabel))

		outLabel := fmt.Sprintf("v%d", input)
		parts = append(parts, fmt.Sprintf("[%s][%s]overlay=x=(W-w)/2:y=(H-h)/2:enable='between(t,%s,%s)'[%s]",
			base, clipLabel, start, end, outLabel))
		base = outLabel
	}
	return strings.Join(parts, ";"), base
}

func seconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}
