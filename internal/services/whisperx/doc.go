// Package whisperx transcribes narration audio with WhisperX run through uvx.
//
// The transcription stage converts the synthesized MP3 to mono 16kHz WAV with
// ffmpeg, runs WhisperX with word alignment and JSON output, then flattens the
// segments into a transcript.Transcript with millisecond word offsets.
//
// Configuration options (model, CUDA, VAD method, language) are passed via
// Config.
package whisperx
