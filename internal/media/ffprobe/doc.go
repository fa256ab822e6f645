// Package ffprobe reads stream counts and durations from ffprobe's JSON
// report. The renderer uses it to size the reel to the narration.
package ffprobe
