package workflow

import (
	"strings"
	"unicode"

	"reelsmith/internal/pipeline"
	"reelsmith/internal/runs"
	"reelsmith/internal/stage"
)

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      runs.Status
	processingStatus runs.Status
	doneStatus       runs.Status
}

func stagesFromSet(set *pipeline.Set) []pipelineStage {
	return []pipelineStage{
		{name: "scripting", handler: set.Scripting, startStatus: runs.StatusPending, processingStatus: runs.StatusScripting, doneStatus: runs.StatusScripted},
		{name: "narrating", handler: set.Narrating, startStatus: runs.StatusScripted, processingStatus: runs.StatusNarrating, doneStatus: runs.StatusNarrated},
		{name: "transcribing", handler: set.Transcribing, startStatus: runs.StatusNarrated, processingStatus: runs.StatusTranscribing, doneStatus: runs.StatusTranscribed},
		{name: "extracting", handler: set.Extracting, startStatus: runs.StatusTranscribed, processingStatus: runs.StatusExtracting, doneStatus: runs.StatusExtracted},
		{name: "aligning", handler: set.Aligning, startStatus: runs.StatusExtracted, processingStatus: runs.StatusAligning, doneStatus: runs.StatusAligned},
		{name: "acquiring", handler: set.Acquiring, startStatus: runs.StatusAligned, processingStatus: runs.StatusAcquiring, doneStatus: runs.StatusAcquired},
		{name: "rendering", handler: set.Rendering, startStatus: runs.StatusAcquired, processingStatus: runs.StatusRendering, doneStatus: runs.StatusCompleted},
	}
}

func deriveStageLabel(status runs.Status) string {
	if status == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(string(status), "_", " "))
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
