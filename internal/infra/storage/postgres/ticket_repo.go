package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage"
)

const pgUniqueViolation = "23505"

// TicketRepo implements storage.TicketRepository using PostgreSQL.
type TicketRepo struct {
	db *DB
}

// NewTicketRepo creates a new PostgreSQL ticket repository.
func NewTicketRepo(db *DB) *TicketRepo {
	return &TicketRepo{db: db}
}

type ticketRow struct {
	ID              string     `db:"id"`
	Source          string     `db:"source"`
	Resource        string     `db:"resource"`
	RunID           *string    `db:"run_id"`
	ErrorKind       string     `db:"error_kind"`
	Severity        string     `db:"severity"`
	Priority        string     `db:"priority"`
	Confidence      string     `db:"confidence"`
	RootCause       string     `db:"root_cause"`
	Recommendations []byte     `db:"recommendations"`
	AutoHeal        bool       `db:"auto_heal"`
	Status          string     `db:"status"`
	SLADeadline     time.Time  `db:"sla_deadline"`
	Metadata        []byte     `db:"metadata"`
	CreatedAt       time.Time  `db:"created_at"`
}

// Create inserts a ticket. The partial unique index on run_id is the
// serialization point for concurrent duplicate deliveries; a violation is
// mapped to storage.ErrDuplicateRunID, never propagated raw.
func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	recs, err := json.Marshal(t.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	meta, err := json.Marshal(t.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO tickets (id, source, resource, run_id, error_kind, severity, priority,
		                     confidence, root_cause, recommendations, auto_heal, status,
		                     sla_deadline, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.db.ExecContext(ctx, query,
		t.ID, string(t.Source), t.Resource, t.RunID, string(t.Kind),
		string(t.Severity), string(t.Priority), string(t.Confidence),
		t.RootCause, recs, t.AutoHealPossible, string(t.Status),
		t.SLADeadline, meta, t.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return storage.ErrDuplicateRunID
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// GetByID retrieves a ticket by id.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var row ticketRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM tickets WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, storage.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return row.toDomain()
}

// GetByRunID retrieves the ticket owning a run id, or nil when none does.
func (r *TicketRepo) GetByRunID(ctx context.Context, runID string) (*domain.Ticket, error) {
	var row ticketRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM tickets WHERE run_id = $1`, runID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket by run id: %w", err)
	}
	return row.toDomain()
}

// UpdateRunID replaces the ticket's run id after remediation spawned a new run.
func (r *TicketRepo) UpdateRunID(ctx context.Context, ticketID, newRunID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET run_id = $1 WHERE id = $2`, newRunID, ticketID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return storage.ErrDuplicateRunID
		}
		return fmt.Errorf("failed to update run id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrTicketNotFound
	}
	return nil
}

// UpdateStatus transitions the ticket lifecycle status.
func (r *TicketRepo) UpdateStatus(
	ctx context.Context,
	ticketID string,
	status domain.TicketStatus,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status = $1 WHERE id = $2`, string(status), ticketID)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrTicketNotFound
	}
	return nil
}

func (row *ticketRow) toDomain() (*domain.Ticket, error) {
	var recs []string
	if len(row.Recommendations) > 0 {
		if err := json.Unmarshal(row.Recommendations, &recs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
		}
	}
	var meta map[string]any
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &domain.Ticket{
		ID:               row.ID,
		Source:           domain.Source(row.Source),
		Resource:         row.Resource,
		RunID:            row.RunID,
		Kind:             domain.ErrorKind(row.ErrorKind),
		Severity:         domain.Severity(row.Severity),
		Priority:         domain.Priority(row.Priority),
		Confidence:       domain.Confidence(row.Confidence),
		RootCause:        row.RootCause,
		Recommendations:  recs,
		AutoHealPossible: row.AutoHeal,
		Status:           domain.TicketStatus(row.Status),
		SLADeadline:      row.SLADeadline,
		Metadata:         meta,
		CreatedAt:        row.CreatedAt,
	}, nil
}
