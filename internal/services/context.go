package services

import "context"

type scopeKey struct{}

// scope holds the identifiers a stage's log lines and requests are tagged
// with. Each With* call stores a copy so parents are never mutated.
type scope struct {
	runID     int64
	hasRunID  bool
	stage     string
	requestID string
}

func scopeFrom(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// WithRunID tags ctx with a run ledger identifier.
func WithRunID(ctx context.Context, id int64) context.Context {
	s := scopeFrom(ctx)
	s.runID, s.hasRunID = id, true
	return context.WithValue(ctx, scopeKey{}, s)
}

// RunIDFromContext returns the run identifier, if set.
func RunIDFromContext(ctx context.Context) (int64, bool) {
	s := scopeFrom(ctx)
	return s.runID, s.hasRunID
}

// WithStage tags ctx with a stage name. Blank names leave ctx unchanged.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	s := scopeFrom(ctx)
	s.stage = stage
	return context.WithValue(ctx, scopeKey{}, s)
}

func StageFromContext(ctx context.Context) (string, bool) {
	s := scopeFrom(ctx)
	return s.stage, s.stage != ""
}

// WithRequestID tags ctx with a correlation identifier. Blank identifiers
// leave ctx unchanged.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	s := scopeFrom(ctx)
	s.requestID = id
	return context.WithValue(ctx, scopeKey{}, s)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	s := scopeFrom(ctx)
	return s.requestID, s.requestID != ""
}
