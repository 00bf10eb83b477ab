package practice

import (
	"context"
	"fmt"
	"strings"

	"github.com/verte-zerg/shadow/internal/stats"
)

// Overview loads the progress report of a user. When loading fails and the
// service degrades on store errors, a zeroed report flagged Degraded is
// returned instead of the error.
func (s *Service) Overview(ctx context.Context, userID string, historyLimit int) (stats.Report, error) {
	if strings.TrimSpace(userID) == "" {
		return stats.Report{}, invalid("user", "must not be empty")
	}
	today := s.Today()
	report, err := stats.BuildReport(ctx, s.store, s.engine, stats.Options{
		UserID:       userID,
		Today:        today,
		HistoryLimit: historyLimit,
	})
	if err == nil {
		return report, nil
	}
	if !s.degrade || ctx.Err() != nil {
		return stats.Report{}, fmt.Errorf("failed to load overview: %w", err)
	}
	s.log.Warn().Err(err).Str("user", userID).Msg("serving default progress")
	report = stats.DefaultReport(s.engine, today)
	report.Degraded = true
	return report, nil
}
