package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage"
)

// Store is an in-memory storage backend used when no database URL is
// configured, and as the unit-test backend. It enforces the same run-id
// uniqueness guarantee as the PostgreSQL backend.
type Store struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
	byRun   map[string]string // run id -> ticket id
	audit   []*domain.AuditEntry
}

func NewStore() *Store {
	return &Store{
		tickets: make(map[string]*domain.Ticket),
		byRun:   make(map[string]string),
	}
}

// -----------------------------------------------------------------------------
// Ticket Repository
// -----------------------------------------------------------------------------

type TicketRepo struct {
	store *Store
}

func NewTicketRepo(store *Store) *TicketRepo {
	return &TicketRepo{store: store}
}

func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if t.RunID != nil {
		if _, taken := r.store.byRun[*t.RunID]; taken {
			return storage.ErrDuplicateRunID
		}
		r.store.byRun[*t.RunID] = t.ID
	}

	cp := *t
	r.store.tickets[t.ID] = &cp
	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.tickets[id]
	if !ok {
		return nil, storage.ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *TicketRepo) GetByRunID(ctx context.Context, runID string) (*domain.Ticket, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.byRun[runID]
	if !ok {
		return nil, nil
	}
	cp := *r.store.tickets[id]
	return &cp, nil
}

func (r *TicketRepo) UpdateRunID(ctx context.Context, ticketID, newRunID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.tickets[ticketID]
	if !ok {
		return storage.ErrTicketNotFound
	}
	if _, taken := r.store.byRun[newRunID]; taken {
		return storage.ErrDuplicateRunID
	}
	if t.RunID != nil {
		delete(r.store.byRun, *t.RunID)
	}
	t.RunID = &newRunID
	r.store.byRun[newRunID] = ticketID
	return nil
}

func (r *TicketRepo) UpdateStatus(
	ctx context.Context,
	ticketID string,
	status domain.TicketStatus,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	t, ok := r.store.tickets[ticketID]
	if !ok {
		return storage.ErrTicketNotFound
	}
	t.Status = status
	return nil
}

// -----------------------------------------------------------------------------
// Audit Repository
// -----------------------------------------------------------------------------

type AuditRepo struct {
	store *Store
}

func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{store: store}
}

func (r *AuditRepo) Append(ctx context.Context, e *domain.AuditEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cp := *e
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.store.audit = append(r.store.audit, &cp)
	return nil
}

func (r *AuditRepo) CountAttempts(ctx context.Context, runID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, e := range r.store.audit {
		if e.Action == domain.ActionRemediationAttempted && e.RunID != nil && *e.RunID == runID {
			count++
		}
	}
	return count, nil
}

func (r *AuditRepo) ListByTicket(
	ctx context.Context,
	ticketID string,
) ([]*domain.AuditEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var entries []*domain.AuditEntry
	for _, e := range r.store.audit {
		if e.TicketID == ticketID {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	return entries, nil
}

func (r *AuditRepo) CountActionsSince(
	ctx context.Context,
	since time.Time,
) (map[domain.AuditAction]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	counts := make(map[domain.AuditAction]int)
	for _, e := range r.store.audit {
		if !e.CreatedAt.Before(since) {
			counts[e.Action]++
		}
	}
	return counts, nil
}
