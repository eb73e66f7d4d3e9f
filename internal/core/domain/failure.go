package domain

import "time"

// FailureEvent is one inbound failure notification. It is never persisted
// as-is; the normalizer transforms it immediately.
type FailureEvent struct {
	Source     Source
	Payload    map[string]any
	ReceivedAt time.Time
}

// NormalizedFailure is the canonical error description derived from a
// FailureEvent. RunID is nil when the upstream payload carried no stable
// run identifier; in that case deduplication and retry-count tracking are
// disabled for the event.
type NormalizedFailure struct {
	Resource  string
	RunID     *string
	ErrorText string
	Metadata  map[string]any
}
