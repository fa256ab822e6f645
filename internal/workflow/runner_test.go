package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"reelsmith/internal/config"
	"reelsmith/internal/notifications"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/preflight"
	"reelsmith/internal/runs"
	"reelsmith/internal/services"
	"reelsmith/internal/stage"
	"reelsmith/internal/testsupport"
)

type fakeStage struct {
	name     string
	calls    *[]string
	execErr  error
	prepErr  error
	onExec   func(*runs.Run)
	seenStat runs.Status
}

func (f *fakeStage) Prepare(_ context.Context, run *runs.Run) error {
	return f.prepErr
}

func (f *fakeStage) Execute(ctx context.Context, run *runs.Run) error {
	*f.calls = append(*f.calls, f.name)
	f.seenStat = run.Status
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		return errors.New("missing request id")
	}
	if f.onExec != nil {
		f.onExec(run)
	}
	return f.execErr
}

func (f *fakeStage) HealthCheck(context.Context) stage.Health {
	if f.execErr != nil {
		return stage.Unhealthy(f.name, "broken")
	}
	return stage.Healthy(f.name)
}

func newFakeSet(calls *[]string) (*pipeline.Set, map[string]*fakeStage) {
	names := []string{"scripting", "narrating", "transcribing", "extracting", "aligning", "acquiring", "rendering"}
	stages := make(map[string]*fakeStage, len(names))
	for _, name := range names {
		stages[name] = &fakeStage{name: name, calls: calls}
	}
	set := &pipeline.Set{
		Scripting:    stages["scripting"],
		Narrating:    stages["narrating"],
		Transcribing: stages["transcribing"],
		Extracting:   stages["extracting"],
		Aligning:     stages["aligning"],
		Acquiring:    stages["acquiring"],
		Rendering:    stages["rendering"],
	}
	return set, stages
}

func newRunner(t *testing.T, set *pipeline.Set) (*Runner, *runs.Store, *runs.Run) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	run := testsupport.NewRun(t, store, cfg, "explain kubernetes")
	return NewRunner(cfg, store, set, nil, WithoutPreflight()), store, run
}

func TestExecuteRunsEveryStage(t *testing.T) {
	var calls []string
	set, stages := newFakeSet(&calls)
	stages["rendering"].onExec = func(run *runs.Run) { run.VideoPath = filepath.Join(run.WorkDir, "reel.mp4") }
	runner, store, run := newRunner(t, set)

	if err := runner.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(calls) != 7 || calls[0] != "scripting" || calls[6] != "rendering" {
		t.Fatalf("unexpected stage order %v", calls)
	}
	if stages["aligning"].seenStat != runs.StatusAligning {
		t.Fatalf("expected processing status during execute, got %q", stages["aligning"].seenStat)
	}

	stored, err := store.GetByID(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != runs.StatusCompleted || stored.ProgressPercent != 100 || stored.VideoPath == "" {
		t.Fatalf("unexpected stored run %+v", stored)
	}
	if _, err := os.Stat(filepath.Join(testsupport.BaseDir(runner.cfg), "logs", "runs", "1.log")); err != nil {
		t.Fatalf("expected per-run log: %v", err)
	}
}

func TestExecuteResumesFromStatus(t *testing.T) {
	var calls []string
	set, _ := newFakeSet(&calls)
	runner, store, run := newRunner(t, set)
	run.Status = runs.StatusExtracting
	if err := store.Update(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	if err := runner.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"extracting", "aligning", "acquiring", "rendering"}
	if len(calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, calls)
		}
	}
}

func TestExecuteMapsFailureStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want runs.Status
	}{
		{name: "validation", err: services.Wrap(services.ErrValidation, "aligning", "close gaps", "bad order", nil), want: runs.StatusReview},
		{name: "external", err: services.Wrap(services.ErrExternalTool, "narrating", "synthesize", "503", nil), want: runs.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			set, stages := newFakeSet(&calls)
			stages["narrating"].execErr = tt.err
			runner, store, run := newRunner(t, set)

			if err := runner.Execute(context.Background(), run); !errors.Is(err, tt.err) {
				t.Fatalf("expected stage error, got %v", err)
			}
			stored, err := store.GetByID(context.Background(), run.ID)
			if err != nil {
				t.Fatal(err)
			}
			if stored.Status != tt.want || stored.ErrorMessage == "" {
				t.Fatalf("expected %s with message, got %+v", tt.want, stored)
			}
			if len(calls) != 2 {
				t.Fatalf("expected execution to stop at narrating, got %v", calls)
			}
		})
	}
}

func TestExecuteRollsBackOnCancel(t *testing.T) {
	var calls []string
	set, stages := newFakeSet(&calls)
	stages["scripting"].execErr = context.Canceled
	runner, store, run := newRunner(t, set)

	if err := runner.Execute(context.Background(), run); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	stored, _ := store.GetByID(context.Background(), run.ID)
	if stored.Status != runs.StatusPending {
		t.Fatalf("expected pending after interruption, got %s", stored.Status)
	}
}

func TestExecuteRefusesLockedRun(t *testing.T) {
	var calls []string
	set, _ := newFakeSet(&calls)
	runner, _, run := newRunner(t, set)
	if err := os.MkdirAll(run.WorkDir, 0o755); err != nil {
		t.Fatal(err)
	}
	lock := flock.New(filepath.Join(run.WorkDir, lockFileName))
	if ok, err := lock.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	t.Cleanup(func() { _ = lock.Unlock() })

	if err := runner.Execute(context.Background(), run); !errors.Is(err, ErrRunLocked) {
		t.Fatalf("expected ErrRunLocked, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("no stage should run while locked, got %v", calls)
	}
}

func TestExecuteRejectsTerminalRun(t *testing.T) {
	var calls []string
	set, _ := newFakeSet(&calls)
	runner, _, run := newRunner(t, set)
	run.Status = runs.StatusFailed
	if err := runner.Execute(context.Background(), run); err == nil {
		t.Fatal("expected failed runs to require a retry first")
	}
}

func TestPreflightFailureStopsRun(t *testing.T) {
	var calls []string
	set, _ := newFakeSet(&calls)
	runner, _, run := newRunner(t, set)
	runner.preflight = func(context.Context, *config.Config) []preflight.Result {
		return []preflight.Result{{Name: "ElevenLabs", Detail: "API key missing"}}
	}
	if err := runner.Execute(context.Background(), run); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("expected no stages to run, got %v", calls)
	}
}

type recordingNotifier struct {
	completed []int64
	failed    []string
}

func (n *recordingNotifier) RunCompleted(_ context.Context, run *runs.Run, _ time.Duration) error {
	n.completed = append(n.completed, run.ID)
	return nil
}

func (n *recordingNotifier) RunFailed(_ context.Context, run *runs.Run, stage string) error {
	n.failed = append(n.failed, stage+":"+string(run.Status))
	return errors.New("ntfy unreachable")
}

func (n *recordingNotifier) Test(context.Context) error { return nil }

var _ notifications.Service = (*recordingNotifier)(nil)

func TestExecuteNotifiesOutcome(t *testing.T) {
	var calls []string
	set, _ := newFakeSet(&calls)
	notifier := &recordingNotifier{}
	runner, _, run := newRunner(t, set)
	WithNotifier(notifier)(runner)

	if err := runner.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(notifier.completed) != 1 || notifier.completed[0] != run.ID {
		t.Fatalf("expected completion notice for run %d, got %v", run.ID, notifier.completed)
	}

	calls = nil
	failing, failStages := newFakeSet(&calls)
	failStages["aligning"].execErr = services.Wrap(services.ErrValidation, "aligning", "close gaps", "bad order", nil)
	runner, _, run = newRunner(t, failing)
	WithNotifier(notifier)(runner)
	if err := runner.Execute(context.Background(), run); err == nil {
		t.Fatal("expected aligning failure")
	}
	if len(notifier.failed) != 1 || notifier.failed[0] != "aligning:review" {
		t.Fatalf("expected one review notice from aligning, got %v", notifier.failed)
	}
}

func TestRunLogPath(t *testing.T) {
	if got := RunLogPath("/var/log/reelsmith", 12); got != filepath.Join("/var/log/reelsmith", "runs", "12.log") {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestHealthReportsEachStage(t *testing.T) {
	var calls []string
	set, stages := newFakeSet(&calls)
	stages["narrating"].execErr = errors.New("down")
	set.Rendering = nil
	runner, _, _ := newRunner(t, set)

	health := runner.Health(context.Background())
	if len(health) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(health))
	}
	if health[1].Ready || health[6].Ready || !health[0].Ready {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestDeriveStageLabel(t *testing.T) {
	if got := deriveStageLabel(runs.StatusTranscribing); got != "Transcribing" {
		t.Fatalf("unexpected label %q", got)
	}
}
