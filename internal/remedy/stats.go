package remedy

import (
	"context"
	"fmt"
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage"
)

// Stats summarizes remediation ledger activity over a window.
type Stats struct {
	Days        int     `json:"period_days"`
	Attempted   int     `json:"attempted"`
	Succeeded   int     `json:"succeeded"`
	Failed      int     `json:"failed"`
	Skipped     int     `json:"skipped"`
	MaxRetries  int     `json:"max_retries_reached"`
	SuccessRate float64 `json:"success_rate"`
}

// CollectStats aggregates ledger actions over the trailing number of days.
func CollectStats(ctx context.Context, audit storage.AuditRepository, days int) (*Stats, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	counts, err := audit.CountActionsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate audit actions: %w", err)
	}

	s := &Stats{
		Days:       days,
		Attempted:  counts[domain.ActionRemediationAttempted],
		Succeeded:  counts[domain.ActionRemediationSucceeded],
		Failed:     counts[domain.ActionRemediationFailed],
		Skipped:    counts[domain.ActionRemediationSkipped],
		MaxRetries: counts[domain.ActionMaxRetriesReached],
	}
	if s.Attempted > 0 {
		s.SuccessRate = float64(s.Succeeded) / float64(s.Attempted)
	}
	return s, nil
}
