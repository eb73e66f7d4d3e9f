package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
)

var (
	// ErrDuplicateRunID is returned by Create when another ticket already
	// owns the run id. This is the authoritative at-most-one-ticket-per-run
	// guarantee; callers must re-query for the winning ticket.
	ErrDuplicateRunID = errors.New("run id already owned by a ticket")

	// ErrTicketNotFound is returned when a ticket id does not exist.
	ErrTicketNotFound = errors.New("ticket not found")
)

// TicketRepository handles ticket storage operations.
type TicketRepository interface {
	// Create inserts a new ticket. Returns ErrDuplicateRunID when the
	// run-id uniqueness constraint is violated.
	Create(ctx context.Context, t *domain.Ticket) error

	// GetByID retrieves a ticket by id. Returns ErrTicketNotFound when absent.
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)

	// GetByRunID retrieves the ticket owning a run id, or nil when none does.
	GetByRunID(ctx context.Context, runID string) (*domain.Ticket, error)

	// UpdateRunID replaces the ticket's run id (remediation spawned a new run).
	UpdateRunID(ctx context.Context, ticketID, newRunID string) error

	// UpdateStatus transitions the ticket lifecycle status.
	UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error
}

// AuditRepository is the append-only remediation ledger.
type AuditRepository interface {
	// Append records one ledger entry. Entries are never updated or deleted.
	Append(ctx context.Context, e *domain.AuditEntry) error

	// CountAttempts returns the number of remediation_attempted entries
	// recorded for a run id.
	CountAttempts(ctx context.Context, runID string) (int, error)

	// ListByTicket returns all entries for a ticket, oldest first.
	ListByTicket(ctx context.Context, ticketID string) ([]*domain.AuditEntry, error)

	// CountActionsSince aggregates entry counts per action from a point in time.
	CountActionsSince(ctx context.Context, since time.Time) (map[domain.AuditAction]int, error)
}
