package drapto

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

const (
	defaultBinary = "drapto"
	// keptOutputLines bounds how much plain output a failed encode reports.
	keptOutputLines = 5
)

// ProgressUpdate is the part of a Drapto progress event the render stage
// reports.
type ProgressUpdate struct {
	Percent float64 `json:"percent"`
	Stage   string  `json:"stage"`
	Message string  `json:"message"`
	Warning string  `json:"warning"`
}

// Client archives a rendered reel into outputDir and returns the archive path.
type Client interface {
	Encode(ctx context.Context, inputPath, outputDir string, progress func(ProgressUpdate)) (string, error)
}

// New returns the CLI client when binary is set, otherwise the in-process
// library encoder.
func New(binary string) Client {
	if strings.TrimSpace(binary) != "" {
		return NewCLI(WithBinary(binary))
	}
	return NewLibrary()
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the drapto executable.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI shells out to an external drapto binary.
type CLI struct {
	binary string
}

func NewCLI(opts ...Option) *CLI {
	c := &CLI{binary: defaultBinary}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CLI) Encode(ctx context.Context, inputPath, outputDir string, progress func(ProgressUpdate)) (string, error) {
	target, err := archivePath(inputPath, outputDir)
	if err != nil {
		return "", err
	}

	cmd := commandContext(ctx, c.binary, encodeArgs(inputPath, outputDir)...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start drapto: %w", err)
	}

	var kept outputTail
	readErr := readEvents(stdout, progress, &kept)
	if err := cmd.Wait(); err != nil {
		if kept.empty() {
			return "", fmt.Errorf("drapto encode failed: %w", err)
		}
		return "", fmt.Errorf("drapto encode failed: %w: %s", err, kept)
	}
	if readErr != nil {
		return "", fmt.Errorf("read drapto output: %w", readErr)
	}
	return target, nil
}

func encodeArgs(inputPath, outputDir string) []string {
	return []string{
		"encode",
		"--input", inputPath,
		"--output", strings.TrimSpace(outputDir),
		"--responsive",
		"--progress-json",
	}
}

// readEvents forwards every JSON line as a progress event and keeps the
// last plain lines in kept.
func readEvents(r io.Reader, progress func(ProgressUpdate), kept *outputTail) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var event ProgressUpdate
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			kept.add(scanner.Text())
			continue
		}
		if progress != nil {
			progress(event)
		}
	}
	return scanner.Err()
}

type outputTail struct {
	lines []string
}

func (t *outputTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > keptOutputLines {
		t.lines = t.lines[len(t.lines)-keptOutputLines:]
	}
}

func (t *outputTail) empty() bool { return len(t.lines) == 0 }

func (t *outputTail) String() string { return strings.Join(t.lines, "; ") }

// archivePath derives <outputDir>/<input stem>.mkv.
func archivePath(inputPath, outputDir string) (string, error) {
	if inputPath == "" {
		return "", errors.New("input path required")
	}
	dir := strings.TrimSpace(outputDir)
	if dir == "" {
		return "", errors.New("output directory required")
	}
	name := filepath.Base(inputPath)
	if stem := strings.TrimSuffix(name, filepath.Ext(name)); stem != "" {
		name = stem
	}
	return filepath.Join(dir, name+".mkv"), nil
}

var _ Client = (*CLI)(nil)
