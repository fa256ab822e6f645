// Package logging builds the slog loggers reelsmith writes through.
//
// Console output is one line per record with the run, stage and component
// hoisted into a prefix; JSON output uses short keys and is also the format of
// the per-run log files that `reelsmith runs log` tails. Field helpers keep
// warning and decision records shaped consistently across stages.
package logging
