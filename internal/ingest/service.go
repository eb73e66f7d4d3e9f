// Package ingest owns the failure-event pipeline: normalize, classify,
// deduplicate by run id, persist the ticket, and hand eligible tickets to
// the remediation orchestrator.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Balaji2106/demo-autoremediation/internal/classify"
	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/redis"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage"
	"github.com/Balaji2106/demo-autoremediation/internal/ingest/normalizer"
	"github.com/Balaji2106/demo-autoremediation/internal/metrics"
	"github.com/Balaji2106/demo-autoremediation/internal/remedy"
)

// Outcome tells the caller what happened to an inbound event.
type Outcome string

const (
	OutcomeCreated            Outcome = "created"
	OutcomeDuplicateIgnored   Outcome = "duplicate_ignored"
	OutcomeDuplicateRaceLoser Outcome = "duplicate_race_condition"
)

// Result is the ingest response for one failure event.
type Result struct {
	Outcome Outcome        `json:"outcome"`
	Ticket  *domain.Ticket `json:"ticket"`
}

// Service drives the ingest pipeline.
type Service struct {
	tickets      storage.TicketRepository
	audit        storage.AuditRepository
	classifier   *classify.Classifier
	orchestrator *remedy.Orchestrator
	policy       *remedy.Policy
	redis        *redis.Client // nil when redis is not configured
	dedupWindow  time.Duration
	enabled      bool
	log          *slog.Logger

	wg sync.WaitGroup
}

// NewService creates the ingest pipeline service. redis may be nil;
// enabled gates remediation dispatch without affecting ticket creation.
func NewService(
	tickets storage.TicketRepository,
	audit storage.AuditRepository,
	classifier *classify.Classifier,
	orchestrator *remedy.Orchestrator,
	policy *remedy.Policy,
	rdb *redis.Client,
	dedupWindow time.Duration,
	enabled bool,
	log *slog.Logger,
) *Service {
	if dedupWindow == 0 {
		dedupWindow = 24 * time.Hour
	}
	return &Service{
		tickets:      tickets,
		audit:        audit,
		classifier:   classifier,
		orchestrator: orchestrator,
		policy:       policy,
		redis:        rdb,
		dedupWindow:  dedupWindow,
		enabled:      enabled,
		log:          log,
	}
}

// Process runs one failure event through the pipeline. Duplicate run ids
// return the existing ticket rather than an error; storage failures are
// the only error path.
func (s *Service) Process(ctx context.Context, event domain.FailureEvent) (*Result, error) {
	metrics.EventsIngested.WithLabelValues(string(event.Source)).Inc()

	nf := normalizer.Normalize(event)
	log := s.log.With("source", event.Source, "resource", nf.Resource)
	if nf.RunID != nil {
		log = log.With("run_id", *nf.RunID)
	}

	// Pre-check before spending an AI call on a duplicate. Redis is a
	// fast-path hint only; the database check is authoritative.
	if nf.RunID != nil {
		if s.redis != nil {
			first, err := s.redis.MarkRunSeen(ctx, *nf.RunID, s.dedupWindow)
			if err != nil {
				log.Warn("redis dedup check failed, falling back to database", "error", err)
			} else if !first {
				if existing, err := s.tickets.GetByRunID(ctx, *nf.RunID); err == nil && existing != nil {
					metrics.DuplicatesDetected.WithLabelValues("precheck").Inc()
					s.appendAudit(ctx, existing, domain.AuditEntry{
						Action:  domain.ActionDuplicateRunDetected,
						Details: "repeated event for run ignored",
					})
					log.Info("duplicate run ignored", "ticket_id", existing.ID)
					return &Result{Outcome: OutcomeDuplicateIgnored, Ticket: existing}, nil
				}
			}
		}
		existing, err := s.tickets.GetByRunID(ctx, *nf.RunID)
		if err != nil {
			return nil, fmt.Errorf("failed to check for existing ticket: %w", err)
		}
		if existing != nil {
			metrics.DuplicatesDetected.WithLabelValues("precheck").Inc()
			s.appendAudit(ctx, existing, domain.AuditEntry{
				Action:  domain.ActionDuplicateRunDetected,
				Details: "repeated event for run ignored",
			})
			log.Info("duplicate run ignored", "ticket_id", existing.ID)
			return &Result{Outcome: OutcomeDuplicateIgnored, Ticket: existing}, nil
		}
	}

	cls := s.classifier.Classify(ctx, nf)
	log = log.With("kind", cls.Kind, "severity", cls.Severity)

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ID:               newTicketID(event.Source, now),
		Source:           event.Source,
		Resource:         nf.Resource,
		RunID:            nf.RunID,
		Kind:             cls.Kind,
		Severity:         cls.Severity,
		Priority:         cls.Priority,
		Confidence:       cls.Confidence,
		RootCause:        cls.RootCause,
		Recommendations:  cls.Recommendations,
		AutoHealPossible: cls.AutoHealPossible,
		Status:           domain.TicketStatusOpen,
		SLADeadline:      now.Add(time.Duration(domain.SLASeconds(cls.Priority)) * time.Second),
		Metadata:         nf.Metadata,
		CreatedAt:        now,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, storage.ErrDuplicateRunID) && nf.RunID != nil {
			// Lost a concurrent race; the winner's ticket is authoritative.
			winner, qerr := s.tickets.GetByRunID(ctx, *nf.RunID)
			if qerr != nil || winner == nil {
				return nil, fmt.Errorf("failed to resolve duplicate winner: %w", qerr)
			}
			metrics.DuplicatesDetected.WithLabelValues("race").Inc()
			s.appendAudit(ctx, winner, domain.AuditEntry{
				Action:  domain.ActionDuplicateRunDetected,
				Details: "concurrent event for same run lost insert race",
			})
			log.Info("duplicate run lost insert race", "ticket_id", winner.ID)
			return &Result{Outcome: OutcomeDuplicateRaceLoser, Ticket: winner}, nil
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	metrics.TicketsCreated.WithLabelValues(string(event.Source), string(cls.Severity)).Inc()
	s.appendAudit(ctx, ticket, domain.AuditEntry{
		Action:  domain.ActionTicketCreated,
		Details: fmt.Sprintf("classified as %s (%s) via %s", cls.Kind, cls.Severity, cls.Origin),
	})
	log.Info("ticket created", "ticket_id", ticket.ID, "priority", ticket.Priority)

	if s.redis != nil {
		if err := s.redis.Publish(ctx, ticket); err != nil {
			log.Warn("failed to broadcast ticket", "error", err)
		}
	}

	if s.enabled && cls.AutoHealPossible && s.policy.Eligible(cls.Kind) {
		s.dispatch(ticket)
	}

	return &Result{Outcome: OutcomeCreated, Ticket: ticket}, nil
}

// dispatch runs remediation in the background so webhook responses do not
// wait out the backoff schedule. The orchestrator mutates ticket state as
// remediation progresses, so it gets its own copy; the caller keeps
// serializing the original into the response.
func (s *Service) dispatch(ticket *domain.Ticket) {
	t := new(domain.Ticket)
	*t = *ticket
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx := context.Background()
		if err := s.orchestrator.Remediate(ctx, t); err != nil &&
			!errors.Is(err, remedy.ErrMaxRetries) && !errors.Is(err, remedy.ErrNotEligible) {
			s.log.Error("remediation error", "ticket_id", t.ID, "error", err)
		}
	}()
}

// Drain blocks until all in-flight remediation goroutines finish.
func (s *Service) Drain() {
	s.wg.Wait()
}

// Acknowledge marks a ticket handled by an operator and records it in the
// ledger.
func (s *Service) Acknowledge(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusAcknowledged); err != nil {
		return nil, fmt.Errorf("failed to acknowledge ticket: %w", err)
	}
	t.Status = domain.TicketStatusAcknowledged
	s.appendAudit(ctx, t, domain.AuditEntry{
		Action:  domain.ActionTicketAcknowledged,
		Details: "acknowledged by operator",
	})
	return t, nil
}

func (s *Service) appendAudit(ctx context.Context, t *domain.Ticket, e domain.AuditEntry) {
	e.ID = uuid.NewString()
	e.TicketID = t.ID
	e.RunID = t.RunID
	e.CreatedAt = time.Now().UTC()
	if err := s.audit.Append(ctx, &e); err != nil {
		s.log.Error("failed to append audit entry",
			"ticket_id", t.ID, "action", e.Action, "error", err)
	}
}

// newTicketID builds ids like ADF-20260827T142233-1a2b3c.
func newTicketID(source domain.Source, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s-%s-%s", source.TicketPrefix(), now.UTC().Format("20060102T150405"), suffix)
}
