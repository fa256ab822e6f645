// Package pipeline implements the stage handlers that take a run from a
// prompt to a composed reel. Each handler reads the artifact recorded by the
// previous stage, writes its own into the run's work directory and records
// the path on the run.
//
// Artifacts, in order: script.txt, audio.mp3, transcript.json,
// sentences.json, keywords.json, timeline.json and reel.mp4.
package pipeline
