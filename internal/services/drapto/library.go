package drapto

import (
	"context"
	"fmt"

	draptolib "github.com/five82/drapto"
)

// Library encodes in-process with the Drapto Go library.
type Library struct {
	options []draptolib.Option
}

// NewLibrary returns a Library that encodes in responsive mode so a render
// does not starve the rest of the machine.
func NewLibrary() *Library {
	return &Library{options: []draptolib.Option{draptolib.WithResponsive()}}
}

func (l *Library) Encode(ctx context.Context, inputPath, outputDir string, progress func(ProgressUpdate)) (string, error) {
	outputPath, err := archivePath(inputPath, outputDir)
	if err != nil {
		return "", err
	}
	encoder, err := draptolib.New(l.options...)
	if err != nil {
		return "", fmt.Errorf("init drapto: %w", err)
	}
	var rep draptolib.Reporter
	if progress != nil {
		rep = reporter(progress)
	}
	if _, err := encoder.EncodeWithReporter(ctx, inputPath, outputDir, rep); err != nil {
		return "", fmt.Errorf("drapto encode: %w", err)
	}
	return outputPath, nil
}

// reporter adapts a progress callback to draptolib.Reporter. Only stage,
// encode progress, failed validation, warnings and errors reach the callback.
type reporter func(ProgressUpdate)

func (r reporter) StageProgress(s draptolib.StageProgress) {
	r(ProgressUpdate{Percent: float64(s.Percent), Stage: s.Stage, Message: s.Message})
}

func (r reporter) EncodingProgress(s draptolib.ProgressSnapshot) {
	r(ProgressUpdate{Percent: float64(s.Percent), Stage: "encoding"})
}

func (r reporter) EncodingComplete(draptolib.EncodingOutcome) {
	r(ProgressUpdate{Percent: 100, Stage: "complete"})
}

func (r reporter) ValidationComplete(s draptolib.ValidationSummary) {
	if !s.Passed {
		r(ProgressUpdate{Stage: "validation", Warning: "output validation failed"})
	}
}

func (r reporter) Warning(message string) {
	r(ProgressUpdate{Stage: "warning", Warning: message})
}

func (r reporter) Error(e draptolib.ReporterError) {
	r(ProgressUpdate{Stage: "error", Message: e.Message})
}

func (reporter) Hardware(draptolib.HardwareSummary) {}
func (reporter) Initialization(draptolib.InitializationSummary) {}
func (reporter) CropResult(draptolib.CropSummary) {}
func (reporter) EncodingConfig(draptolib.EncodingConfigSummary) {}
func (reporter) EncodingStarted(uint64) {}
func (reporter) OperationComplete(string) {}
func (reporter) BatchStarted(draptolib.BatchStartInfo) {}
func (reporter) FileProgress(draptolib.FileProgressContext) {}
func (reporter) BatchComplete(draptolib.BatchSummary) {}

var (
	_ Client             = (*Library)(nil)
	_ draptolib.Reporter = reporter(nil)
)
