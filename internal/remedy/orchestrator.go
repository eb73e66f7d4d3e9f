package remedy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/playbook"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage"
	"github.com/Balaji2106/demo-autoremediation/internal/metrics"
)

var (
	// ErrNotEligible means the error kind has no remediation rule.
	ErrNotEligible = errors.New("error kind not eligible for auto-remediation")

	// ErrMaxRetries means the retry ceiling for the run was reached.
	ErrMaxRetries = errors.New("max retries reached for run")
)

// Orchestrator runs one remediation attempt per invocation: it counts
// prior attempts from the ledger, waits out the backoff, triggers the
// playbook, and records the outcome. It never loops; each failure event
// carries its own invocation.
type Orchestrator struct {
	policy   *Policy
	tickets  storage.TicketRepository
	audit    storage.AuditRepository
	playbook *playbook.Client
	log      *slog.Logger
}

// NewOrchestrator creates a remediation orchestrator.
func NewOrchestrator(
	policy *Policy,
	tickets storage.TicketRepository,
	audit storage.AuditRepository,
	pb *playbook.Client,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		policy:   policy,
		tickets:  tickets,
		audit:    audit,
		playbook: pb,
		log:      log,
	}
}

// Remediate executes one attempt for the ticket. Attempt counting is
// keyed by run id; tickets without a run id always start at attempt 1.
func (o *Orchestrator) Remediate(ctx context.Context, t *domain.Ticket) error {
	rule, ok := o.policy.Lookup(t.Kind)
	if !ok {
		return ErrNotEligible
	}

	log := o.log.With("ticket_id", t.ID, "kind", t.Kind, "playbook", rule.Playbook)

	if !o.playbook.Configured(rule.Playbook) {
		o.append(ctx, t, domain.AuditEntry{
			Action:   domain.ActionRemediationSkipped,
			Playbook: rule.Playbook,
			Details:  fmt.Sprintf("no endpoint configured for playbook %s", rule.Playbook),
		})
		metrics.RemediationOutcomes.WithLabelValues(string(t.Kind), "skipped").Inc()
		log.Warn("remediation skipped, playbook not configured")
		return nil
	}

	count := 0
	if t.RunID != nil {
		var err error
		count, err = o.audit.CountAttempts(ctx, *t.RunID)
		if err != nil {
			return fmt.Errorf("failed to count attempts: %w", err)
		}
	}

	if count >= rule.MaxRetries {
		o.append(ctx, t, domain.AuditEntry{
			Action:  domain.ActionMaxRetriesReached,
			Attempt: count,
			Details: fmt.Sprintf("retry ceiling %d reached", rule.MaxRetries),
		})
		metrics.RemediationOutcomes.WithLabelValues(string(t.Kind), "max_retries").Inc()
		log.Warn("max retries reached", "attempts", count, "max", rule.MaxRetries)
		return ErrMaxRetries
	}

	attempt := count + 1
	delay := rule.Delay(count)

	o.append(ctx, t, domain.AuditEntry{
		Action:         domain.ActionRemediationAttempted,
		Attempt:        attempt,
		BackoffSeconds: int(delay.Seconds()),
		Playbook:       rule.Playbook,
		Details:        fmt.Sprintf("attempt %d/%d after %s backoff", attempt, rule.MaxRetries, delay),
	})
	metrics.RemediationAttempts.WithLabelValues(string(t.Kind)).Inc()
	log.Info("remediation attempt scheduled", "attempt", attempt, "max", rule.MaxRetries, "backoff", delay)

	if t.Status == domain.TicketStatusOpen {
		if err := o.tickets.UpdateStatus(ctx, t.ID, domain.TicketStatusInProgress); err != nil {
			log.Error("failed to mark ticket in progress", "error", err)
		} else {
			t.Status = domain.TicketStatusInProgress
		}
	}

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	result, err := o.playbook.Trigger(ctx, rule.Playbook, playbook.TriggerRequest{
		TicketID:   t.ID,
		ErrorKind:  t.Kind,
		Metadata:   t.Metadata,
		Attempt:    attempt,
		MaxRetries: rule.MaxRetries,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		o.append(ctx, t, domain.AuditEntry{
			Action:   domain.ActionRemediationFailed,
			Attempt:  attempt,
			Playbook: rule.Playbook,
			Details:  err.Error(),
		})
		metrics.RemediationOutcomes.WithLabelValues(string(t.Kind), "failed").Inc()
		log.Error("remediation failed", "attempt", attempt, "error", err)
		return fmt.Errorf("failed to trigger playbook: %w", err)
	}

	details := "playbook triggered"
	if result.NewRunID != "" && (t.RunID == nil || *t.RunID != result.NewRunID) {
		if err := o.tickets.UpdateRunID(ctx, t.ID, result.NewRunID); err != nil {
			log.Error("failed to update ticket run id", "new_run_id", result.NewRunID, "error", err)
		} else {
			details = fmt.Sprintf("playbook triggered, new run %s", result.NewRunID)
			t.RunID = &result.NewRunID
		}
	}

	o.append(ctx, t, domain.AuditEntry{
		Action:   domain.ActionRemediationSucceeded,
		Attempt:  attempt,
		Playbook: rule.Playbook,
		Details:  details,
	})
	metrics.RemediationOutcomes.WithLabelValues(string(t.Kind), "succeeded").Inc()
	log.Info("remediation succeeded", "attempt", attempt)
	return nil
}

// append writes a ledger entry, filling the ticket-derived fields. Ledger
// write failures are logged loudly but do not abort remediation.
func (o *Orchestrator) append(ctx context.Context, t *domain.Ticket, e domain.AuditEntry) {
	e.ID = uuid.NewString()
	e.TicketID = t.ID
	e.RunID = t.RunID
	e.CreatedAt = time.Now().UTC()
	if err := o.audit.Append(ctx, &e); err != nil {
		o.log.Error("failed to append audit entry",
			"ticket_id", t.ID, "action", e.Action, "error", err)
	}
}
