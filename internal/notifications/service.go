package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/runs"
)

const userAgent = "reelsmith/0.1"

// promptPreviewLength caps how much of a prompt is quoted in a message.
const promptPreviewLength = 80

// Service is the notification surface the workflow runner uses.
type Service interface {
	RunCompleted(ctx context.Context, run *runs.Run, elapsed time.Duration) error
	RunFailed(ctx context.Context, run *runs.Run, stage string) error
	Test(ctx context.Context) error
}

// NewService builds an ntfy notifier, or a no-op when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil || strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: strings.TrimSpace(cfg.Notifications.NtfyTopic),
		client:   &http.Client{Timeout: timeout},
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) RunCompleted(ctx context.Context, run *runs.Run, elapsed time.Duration) error {
	var body strings.Builder
	fmt.Fprintf(&body, "🎬 Reel ready: %s", describeRun(run))
	if run.VideoPath != "" {
		fmt.Fprintf(&body, "\nFile: %s", filepath.Base(run.VideoPath))
	}
	if elapsed = elapsed.Round(time.Second); elapsed > 0 {
		fmt.Fprintf(&body, "\nTook %s", elapsed)
	}
	return n.send(ctx, message{
		title:    "reelsmith - Run Complete",
		body:     body.String(),
		tags:     []string{"reelsmith", "run", "completed"},
		priority: "high",
	})
}

func (n *ntfyService) RunFailed(ctx context.Context, run *runs.Run, stage string) error {
	reason := strings.TrimSpace(run.ErrorMessage)
	if reason == "" {
		reason = "unknown error"
	}
	title := "reelsmith - Run Failed"
	tags := []string{"reelsmith", "run", "failed"}
	if run.Status == runs.StatusReview {
		title = "reelsmith - Review Needed"
		tags = []string{"reelsmith", "run", "review"}
	}
	return n.send(ctx, message{
		title:    title,
		body:     fmt.Sprintf("❌ %s failed during %s: %s", describeRun(run), stage, reason),
		tags:     tags,
		priority: "high",
	})
}

func (n *ntfyService) Test(ctx context.Context) error {
	return n.send(ctx, message{
		title:    "reelsmith - Test",
		body:     "🧪 Notification system test",
		tags:     []string{"reelsmith", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", msg.title)
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// describeRun labels a run by id and a shortened prompt.
func describeRun(run *runs.Run) string {
	prompt := strings.Join(strings.Fields(run.Prompt), " ")
	if prompt == "" {
		return fmt.Sprintf("run %d", run.ID)
	}
	if r := []rune(prompt); len(r) > promptPreviewLength {
		prompt = string(r[:promptPreviewLength-1]) + "…"
	}
	return fmt.Sprintf("run %d (%q)", run.ID, prompt)
}

type noopService struct{}

func (noopService) RunCompleted(context.Context, *runs.Run, time.Duration) error { return nil }
func (noopService) RunFailed(context.Context, *runs.Run, string) error           { return nil }
func (noopService) Test(context.Context) error                                   { return nil }
