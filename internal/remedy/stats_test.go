package remedy

import (
	"context"
	"testing"
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage/memory"
)

func TestCollectStats(t *testing.T) {
	store := memory.NewStore()
	audit := memory.NewAuditRepo(store)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, action := range []domain.AuditAction{
		domain.ActionRemediationAttempted,
		domain.ActionRemediationAttempted,
		domain.ActionRemediationAttempted,
		domain.ActionRemediationSucceeded,
		domain.ActionRemediationSucceeded,
		domain.ActionRemediationFailed,
		domain.ActionRemediationSkipped,
		domain.ActionMaxRetriesReached,
		domain.ActionTicketCreated,
	} {
		e := domain.AuditEntry{ID: string(rune('a' + i)), Action: action, CreatedAt: now}
		if err := audit.Append(ctx, &e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	// One attempt outside the window must not count.
	stale := domain.AuditEntry{ID: "stale", Action: domain.ActionRemediationAttempted, CreatedAt: now.AddDate(0, 0, -10)}
	if err := audit.Append(ctx, &stale); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	stats, err := CollectStats(ctx, audit, 7)
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}

	if stats.Attempted != 3 {
		t.Errorf("Attempted = %d, want 3", stats.Attempted)
	}
	if stats.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", stats.Succeeded)
	}
	if stats.Failed != 1 || stats.Skipped != 1 || stats.MaxRetries != 1 {
		t.Errorf("Unexpected counts: %+v", stats)
	}
	if want := 2.0 / 3.0; stats.SuccessRate != want {
		t.Errorf("SuccessRate = %f, want %f", stats.SuccessRate, want)
	}
}

func TestCollectStats_DefaultWindow(t *testing.T) {
	store := memory.NewStore()
	audit := memory.NewAuditRepo(store)

	stats, err := CollectStats(context.Background(), audit, 0)
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}
	if stats.Days != 7 {
		t.Errorf("Expected default 7 day window, got %d", stats.Days)
	}
	if stats.SuccessRate != 0 {
		t.Errorf("Expected zero success rate with no attempts, got %f", stats.SuccessRate)
	}
}
