// Package remedy decides whether a classified failure is retried,
// schedules the backoff, triggers the playbook, and records every step
// in the audit ledger.
package remedy

import (
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
)

// Rule defines the remediation policy for one error kind.
type Rule struct {
	MaxRetries int
	// Schedule holds per-attempt delays in seconds. Attempts beyond the
	// schedule length reuse the last entry.
	Schedule []int
	Playbook domain.PlaybookType
}

// Delay returns the backoff before the given attempt count (number of
// attempts already made). The schedule clamps at its last entry.
func (r Rule) Delay(attemptCount int) time.Duration {
	if len(r.Schedule) == 0 {
		return 0
	}
	idx := attemptCount
	if idx >= len(r.Schedule) {
		idx = len(r.Schedule) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return time.Duration(r.Schedule[idx]) * time.Second
}

// Policy is the eligibility table. Kinds absent from the table are never
// auto-remediated.
type Policy struct {
	rules map[domain.ErrorKind]Rule
}

// NewPolicy builds a policy from an explicit rule table.
func NewPolicy(rules map[domain.ErrorKind]Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy returns the built-in remediation table.
func DefaultPolicy() *Policy {
	return &Policy{rules: map[domain.ErrorKind]Rule{
		domain.KindGatewayTimeout:              {MaxRetries: 3, Schedule: []int{10, 30, 60}, Playbook: domain.PlaybookRetryPipeline},
		domain.KindHTTPConnectionFailed:        {MaxRetries: 3, Schedule: []int{5, 15, 30}, Playbook: domain.PlaybookRetryPipeline},
		domain.KindThrottlingError:             {MaxRetries: 5, Schedule: []int{30, 60, 120, 300, 600}, Playbook: domain.PlaybookRetryPipeline},
		domain.KindInternalServerError:         {MaxRetries: 2, Schedule: []int{30, 60}, Playbook: domain.PlaybookRetryPipeline},
		domain.KindUserErrorSourceBlobNotExist: {MaxRetries: 3, Schedule: []int{60, 120, 300}, Playbook: domain.PlaybookRerunUpstream},
		domain.KindClusterStartFailure:         {MaxRetries: 2, Schedule: []int{60, 120}, Playbook: domain.PlaybookRestartCluster},
		domain.KindDatabricksTimeout:           {MaxRetries: 2, Schedule: []int{30, 60}, Playbook: domain.PlaybookRetryJob},
		domain.KindDriverNotResponding:         {MaxRetries: 1, Schedule: []int{60}, Playbook: domain.PlaybookRestartCluster},
		domain.KindLibraryInstallationError:    {MaxRetries: 2, Schedule: []int{30, 60}, Playbook: domain.PlaybookReinstallLibraries},
		domain.KindResourceExhausted:           {MaxRetries: 2, Schedule: []int{60, 120}, Playbook: domain.PlaybookScaleCluster},
		domain.KindClusterTermination:          {MaxRetries: 2, Schedule: []int{60, 120}, Playbook: domain.PlaybookRestartCluster},
	}}
}

// Lookup returns the rule for an error kind, if any.
func (p *Policy) Lookup(kind domain.ErrorKind) (Rule, bool) {
	r, ok := p.rules[kind]
	return r, ok
}

// Eligible reports whether a kind has a remediation rule.
func (p *Policy) Eligible(kind domain.ErrorKind) bool {
	_, ok := p.rules[kind]
	return ok
}
