package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"reelsmith/internal/alignment"
	"reelsmith/internal/keywords"
	"reelsmith/internal/logging"
)

// Searcher finds and downloads stock media.
type Searcher interface {
	SearchUnsplash(ctx context.Context, query string) (string, error)
	SearchGoogle(ctx context.Context, query string) (string, error)
	SearchTenor(ctx context.Context, query string) (string, error)
	Download(ctx context.Context, rawURL, dest string) (int64, error)
}

// ClipRenderer renders a caption card.
type ClipRenderer interface {
	Render(ctx context.Context, keyword string, durationMillis int64, dest string) error
}

// Result records the outcome for one segment.
type Result struct {
	OrderID int
	Type    keywords.MediaType
	Path    string
	Source  string
	Err     error
}

// Report summarizes an acquisition pass.
type Report struct {
	Results  []Result
	Acquired int
	Skipped  int
}

// Acquirer fills segment media paths.
type Acquirer struct {
	search Searcher
	clips  ClipRenderer
	logger *slog.Logger
}

// NewAcquirer builds an acquirer. search may be nil when no provider is
// configured; image and GIF segments are then skipped.
func NewAcquirer(search Searcher, clips ClipRenderer, logger *slog.Logger) *Acquirer {
	return &Acquirer{search: search, clips: clips, logger: logging.NewComponentLogger(logger, "media")}
}

// Acquire obtains media for every segment. Segments whose file already exists
// are kept as-is so interrupted runs resume cheaply. Only context
// cancellation is returned as an error.
func (a *Acquirer) Acquire(ctx context.Context, segments []alignment.Segment) (Report, error) {
	var report Report
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := Result{OrderID: seg.OrderID, Type: seg.Type, Path: seg.Path}
		if info, err := os.Stat(seg.Path); err == nil && info.Size() > 0 {
			res.Source = "existing"
		} else {
			res.Source, res.Err = a.acquireOne(ctx, seg)
		}
		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
				return report, res.Err
			}
			report.Skipped++
			logging.WarnWithContext(a.logger, "media unavailable; segment left blank", "media_skipped",
				logging.Int("order_id", seg.OrderID),
				logging.String("type", string(seg.Type)),
				logging.String("keyword", seg.Keyword),
				logging.Error(res.Err),
				logging.String(logging.FieldImpact, "background shows during this segment"),
				logging.String(logging.FieldErrorHint, "check media provider credentials"),
			)
		} else {
			report.Acquired++
			a.logger.Debug("media acquired",
				logging.Int("order_id", seg.OrderID),
				logging.String("source", res.Source),
				logging.String("path", seg.Path),
			)
		}
		report.Results = append(report.Results, res)
	}
	a.logger.Info("media acquisition complete",
		logging.Int("segments", len(segments)),
		logging.Int("acquired", report.Acquired),
		logging.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (a *Acquirer) acquireOne(ctx context.Context, seg alignment.Segment) (string, error) {
	switch seg.Type {
	case keywords.MediaImage:
		return a.image(ctx, seg)
	case keywords.MediaGIF:
		if a.search == nil {
			return "", errors.New("no gif provider configured")
		}
		url, err := a.search.SearchTenor(ctx, seg.Keyword)
		if err != nil {
			return "", err
		}
		if _, err := a.search.Download(ctx, url, seg.Path); err != nil {
			return "", err
		}
		return "tenor", nil
	case keywords.MediaText:
		if a.clips == nil {
			return "", errors.New("no text clip renderer configured")
		}
		if err := a.clips.Render(ctx, seg.Keyword, seg.Duration(), seg.Path); err != nil {
			return "", err
		}
		return "caption", nil
	default:
		return "", fmt.Errorf("unsupported media type %q", seg.Type)
	}
}

func (a *Acquirer) image(ctx context.Context, seg alignment.Segment) (string, error) {
	if a.search == nil {
		return "", errors.New("no image provider configured")
	}
	url, err := a.search.SearchUnsplash(ctx, seg.Keyword)
	source := "unsplash"
	if err != nil {
		a.logger.Debug("unsplash search failed; trying google",
			logging.Int("order_id", seg.OrderID),
			logging.Error(err),
		)
		url, err = a.search.SearchGoogle(ctx, seg.Keyword)
		source = "google"
		if err != nil {
			return "", err
		}
	}
	if _, err := a.search.Download(ctx, url, seg.Path); err != nil {
		return "", err
	}
	return source, nil
}
