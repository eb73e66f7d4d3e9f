package domain

import "time"

// TicketStatus is the lifecycle state of a ticket. Tickets are never
// deleted, only transitioned to acknowledged.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "open"
	TicketStatusInProgress   TicketStatus = "in_progress"
	TicketStatusAcknowledged TicketStatus = "acknowledged"
)

// Ticket is the persistent record for one unique failure. At most one
// ticket exists per non-null run id; the storage layer enforces this with
// a partial unique index.
type Ticket struct {
	ID               string         `json:"id" db:"id"`
	Source           Source         `json:"source" db:"source"`
	Resource         string         `json:"resource" db:"resource"`
	RunID            *string        `json:"run_id" db:"run_id"`
	Kind             ErrorKind      `json:"error_kind" db:"error_kind"`
	Severity         Severity       `json:"severity" db:"severity"`
	Priority         Priority       `json:"priority" db:"priority"`
	Confidence       Confidence     `json:"confidence" db:"confidence"`
	RootCause        string         `json:"root_cause" db:"root_cause"`
	Recommendations  []string       `json:"recommendations" db:"-"`
	AutoHealPossible bool           `json:"auto_heal_possible" db:"auto_heal"`
	Status           TicketStatus   `json:"status" db:"status"`
	SLADeadline      time.Time      `json:"sla_deadline" db:"sla_deadline"`
	Metadata         map[string]any `json:"metadata" db:"-"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}
