package runs

import (
	"context"
	"fmt"
)

// Stats counts runs per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(*) FROM runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var (
			status Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan run stats: %w", err)
		}
		stats[status] = n
	}
	return stats, rows.Err()
}

// Summary folds per-status counts into lifecycle buckets. Active covers
// every in-flight and between-stage status.
type Summary struct {
	Total     int
	Pending   int
	Active    int
	Failed    int
	Review    int
	Completed int
}

// Summarize buckets the counts returned by Stats.
func Summarize(stats map[Status]int) Summary {
	var sum Summary
	for status, n := range stats {
		sum.Total += n
		switch status {
		case StatusPending:
			sum.Pending += n
		case StatusFailed:
			sum.Failed += n
		case StatusReview:
			sum.Review += n
		case StatusCompleted:
			sum.Completed += n
		default:
			sum.Active += n
		}
	}
	return sum
}

// Path is the SQLite file backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}
