// Package alignment binds keyword tokens to narration time ranges and builds
// the gap-free timeline consumed by media acquisition and rendering.
//
// The pipeline is:
//
//	WordIndex   normalizes transcript words (lower-case, trailing .,?!:;'" trimmed)
//	FindPhrase  locates the earliest valid match for one keyword
//	Aligner     walks tokens in order_id order, threading a State of
//	            (cursor, used word ranges) so no word is claimed twice
//	CloseGaps   starts the timeline at zero and makes segments contiguous
//
// Matching is greedy and never backtracks: each later phrase word is bound to
// the first unused match after the previous one, costing
// O(phrase words x transcript words) per candidate start. Keywords that do
// not match are dropped from the timeline and logged at debug level; they are
// never an error.
//
// CloseGaps can leave zero-length segments (end == start) when adjacent
// starts are one millisecond apart or the last matched word has no width.
// Rendering skips clips without a positive duration.
//
// The keyword loop is sequential by construction. Each step depends on the
// cursor and used ranges produced by the previous step.
package alignment
