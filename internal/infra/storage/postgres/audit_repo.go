package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
)

// AuditRepo implements storage.AuditRepository using PostgreSQL. The table
// is append-only: no UPDATE or DELETE is ever issued against it, which is
// what makes attempt counting safe without locking.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates a new PostgreSQL audit ledger repository.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append records one ledger entry.
func (r *AuditRepo) Append(ctx context.Context, e *domain.AuditEntry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_trail (id, ticket_id, run_id, action, attempt, backoff_seconds,
		                         playbook_type, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.TicketID, e.RunID, string(e.Action), e.Attempt,
		e.BackoffSeconds, string(e.Playbook), e.Details, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// CountAttempts counts remediation_attempted entries for a run id.
func (r *AuditRepo) CountAttempts(ctx context.Context, runID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM audit_trail WHERE run_id = $1 AND action = $2`
	err := r.db.GetContext(ctx, &count, query, runID, string(domain.ActionRemediationAttempted))
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

// ListByTicket returns all ledger entries for a ticket, oldest first.
func (r *AuditRepo) ListByTicket(
	ctx context.Context,
	ticketID string,
) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, ticket_id, run_id, action, attempt, backoff_seconds,
		       playbook_type, details, created_at
		FROM audit_trail
		WHERE ticket_id = $1
		ORDER BY created_at ASC
	`

	var rows []struct {
		ID             string    `db:"id"`
		TicketID       string    `db:"ticket_id"`
		RunID          *string   `db:"run_id"`
		Action         string    `db:"action"`
		Attempt        int       `db:"attempt"`
		BackoffSeconds int       `db:"backoff_seconds"`
		PlaybookType   string    `db:"playbook_type"`
		Details        string    `db:"details"`
		CreatedAt      time.Time `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, ticketID); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]*domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &domain.AuditEntry{
			ID:             row.ID,
			TicketID:       row.TicketID,
			RunID:          row.RunID,
			Action:         domain.AuditAction(row.Action),
			Attempt:        row.Attempt,
			BackoffSeconds: row.BackoffSeconds,
			Playbook:       domain.PlaybookType(row.PlaybookType),
			Details:        row.Details,
			CreatedAt:      row.CreatedAt,
		})
	}
	return entries, nil
}

// CountActionsSince aggregates entry counts per action from a point in time.
func (r *AuditRepo) CountActionsSince(
	ctx context.Context,
	since time.Time,
) (map[domain.AuditAction]int, error) {
	query := `
		SELECT action, COUNT(*) AS count
		FROM audit_trail
		WHERE created_at >= $1
		GROUP BY action
	`

	var rows []struct {
		Action string `db:"action"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to count actions: %w", err)
	}

	counts := make(map[domain.AuditAction]int, len(rows))
	for _, row := range rows {
		counts[domain.AuditAction(row.Action)] = row.Count
	}
	return counts, nil
}
