package domain

import "time"

// AuditAction names one remediation-related decision or outcome recorded
// in the append-only ledger.
type AuditAction string

const (
	ActionTicketCreated        AuditAction = "ticket_created"
	ActionTicketAcknowledged   AuditAction = "ticket_acknowledged"
	ActionDuplicateRunDetected AuditAction = "duplicate_run_detected"

	ActionRemediationAttempted  AuditAction = "remediation_attempted"
	ActionRemediationSucceeded  AuditAction = "remediation_succeeded"
	ActionRemediationFailed     AuditAction = "remediation_failed"
	ActionRemediationSkipped    AuditAction = "remediation_skipped"
	ActionMaxRetriesReached     AuditAction = "remediation_max_retries_reached"
)

// AuditEntry is one immutable row of the audit ledger. Entries are only
// ever appended; attempt counting reads them back.
type AuditEntry struct {
	ID             string       `json:"id" db:"id"`
	TicketID       string       `json:"ticket_id" db:"ticket_id"`
	RunID          *string      `json:"run_id" db:"run_id"`
	Action         AuditAction  `json:"action" db:"action"`
	Attempt        int          `json:"attempt" db:"attempt"`
	BackoffSeconds int          `json:"backoff_seconds" db:"backoff_seconds"`
	Playbook       PlaybookType `json:"playbook_type" db:"playbook_type"`
	Details        string       `json:"details" db:"details"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}
