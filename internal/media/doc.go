// Package media fills each timeline segment's media slot.
//
// Image segments are searched on Unsplash, then Google Custom Search. GIF
// segments use Tenor's MP4 rendition. Text segments are rendered locally as a
// fading caption card with ffmpeg. Acquisition is best effort: a segment whose
// media cannot be obtained is logged and skipped, and the renderer leaves the
// background visible for that window.
package media
