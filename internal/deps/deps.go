// Package deps checks for the external binaries the pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external binary. Optional binaries only serve some
// configurations and never fail preflight.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the result of looking up a Requirement. Path is the resolved
// executable when Available; Detail explains why it is not.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// PipelineRequirements lists the binaries a run needs. uvx is only used when
// transcripts are produced locally with WhisperX.
func PipelineRequirements(ffmpeg, ffprobe, uvx string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "audio conversion, text clips and final composition"},
		{Name: "FFprobe", Command: ffprobe, Description: "narration and clip duration probing"},
		{Name: "uvx", Command: uvx, Description: "runs WhisperX for word timestamps", Optional: true},
	}
}

// CheckBinaries resolves each requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		results[i] = lookup(req)
	}
	return results
}

func lookup(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found (needed for %s)", req.Command, req.Description)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}

// Missing returns the required statuses that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}
