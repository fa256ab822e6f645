// Package logs reads and follows run log files for the CLI.
//
// Tail returns the last lines of a file together with the byte offset that
// follows them; Follow resumes from such an offset and streams new lines as
// the workflow runner appends them.
package logs
