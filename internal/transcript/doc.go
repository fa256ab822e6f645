// Package transcript models word-timestamped narration transcripts and the
// sentence view derived from them.
//
// A Transcript carries the full narration text plus one Word per spoken token
// with millisecond start/end offsets, sorted by start. Sentences splits the
// text on terminal punctuation and maps each sentence onto the next run of
// words by word count, which is how keyword extraction learns sentence
// boundaries.
package transcript
