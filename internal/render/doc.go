// Package render composes the final reel: it re-times acquired segments
// against the narration length, overlays each clip on a black canvas with a
// single ffmpeg filter graph, muxes the narration and optionally archives the
// result through Drapto.
package render
