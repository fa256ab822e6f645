package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelsmith/internal/runs"
	"reelsmith/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "rendering", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"rendering", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestFailureStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want runs.Status
	}{
		{"validation", services.Wrap(services.ErrValidation, "aligning", "load", "invalid", nil), runs.StatusReview},
		{"not found", fmt.Errorf("outer: %w", services.Wrap(services.ErrNotFound, "acquiring", "search", "", nil)), runs.StatusReview},
		{"configuration", services.Wrap(services.ErrConfiguration, "narrating", "", "missing key", nil), runs.StatusReview},
		{"transient", services.Wrap(services.ErrTransient, "rendering", "copy", "copy failed", errors.New("io")), runs.StatusFailed},
		{"nil", nil, runs.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.FailureStatus(tt.err); got != tt.want {
				t.Fatalf("FailureStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStageErrorMessageAndHint(t *testing.T) {
	err := services.Wrap(services.ErrConfiguration, "narrating", "", "missing ElevenLabs key", nil)
	var stageErr *services.StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != "narrating" {
		t.Fatalf("expected StageError, got %T", err)
	}
	if got := err.Error(); got != "configuration error: narrating: missing ElevenLabs key" {
		t.Fatalf("unexpected message %q", got)
	}
	if hint := services.Hint(fmt.Errorf("run 3: %w", err)); !strings.Contains(hint, "config validate") {
		t.Fatalf("unexpected hint %q", hint)
	}
	if hint := services.Hint(errors.New("plain")); !strings.Contains(hint, "retry") {
		t.Fatalf("unexpected default hint %q", hint)
	}
}
