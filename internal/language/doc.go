// Package language normalizes transcription language settings to the ISO
// 639-1 codes WhisperX expects and reports whether word-level alignment is
// available for them.
package language
