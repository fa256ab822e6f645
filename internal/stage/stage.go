// Package stage defines the contract between the workflow runner and the
// pipeline stages it drives.
package stage

import (
	"context"
	"log/slog"

	"reelsmith/internal/runs"
)

// Handler is one pipeline step. Prepare runs before the step's processing
// status is persisted; Execute does the work and records artifact paths on
// the run.
type Handler interface {
	Prepare(context.Context, *runs.Run) error
	Execute(context.Context, *runs.Run) error
	HealthCheck(context.Context) Health
}

// LoggerAware handlers receive a logger carrying run, stage and correlation
// fields before Execute.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}

// Health is a stage's readiness as reported to preflight and /health.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}

// FromError reports name as healthy when err is nil.
func FromError(name string, err error) Health {
	if err != nil {
		return Unhealthy(name, err.Error())
	}
	return Healthy(name)
}
