package remedy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/playbook"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/storage/memory"
	"github.com/Balaji2106/demo-autoremediation/internal/metrics"
)

// outcomeCount reads the current value of the outcome counter for a kind so
// tests can assert on deltas.
func outcomeCount(kind domain.ErrorKind, outcome string) float64 {
	return testutil.ToFloat64(metrics.RemediationOutcomes.WithLabelValues(string(kind), outcome))
}

// fastPolicy mirrors the default table shape with zero-second backoffs so
// tests do not sleep.
func fastPolicy() *Policy {
	return NewPolicy(map[domain.ErrorKind]Rule{
		domain.KindGatewayTimeout:      {MaxRetries: 3, Schedule: []int{0, 0, 0}, Playbook: domain.PlaybookRetryPipeline},
		domain.KindDriverNotResponding: {MaxRetries: 1, Schedule: []int{0}, Playbook: domain.PlaybookRestartCluster},
	})
}

type playbookStub struct {
	mu       sync.Mutex
	calls    []playbook.TriggerRequest
	status   int
	response map[string]any
}

func (s *playbookStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playbook.TriggerRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		s.calls = append(s.calls, req)
		s.mu.Unlock()

		if s.status != 0 {
			w.WriteHeader(s.status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.response)
	}
}

func (s *playbookStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestOrchestrator(t *testing.T, endpoint string) (*Orchestrator, *memory.TicketRepo, *memory.AuditRepo) {
	t.Helper()
	store := memory.NewStore()
	tickets := memory.NewTicketRepo(store)
	audit := memory.NewAuditRepo(store)

	endpoints := map[string]string{}
	if endpoint != "" {
		endpoints[string(domain.PlaybookRetryPipeline)] = endpoint
		endpoints[string(domain.PlaybookRestartCluster)] = endpoint
	}
	client := playbook.NewClient(playbook.Config{Endpoints: endpoints, MaxAttempts: 1})

	return NewOrchestrator(fastPolicy(), tickets, audit, client, slog.Default()), tickets, audit
}

func ticketWithRun(runID string) *domain.Ticket {
	return &domain.Ticket{
		ID:     "ADF-20260827T120000-abc123",
		Kind:   domain.KindGatewayTimeout,
		RunID:  &runID,
		Status: domain.TicketStatusOpen,
	}
}

func actionsFor(t *testing.T, audit *memory.AuditRepo, ticketID string) []domain.AuditAction {
	t.Helper()
	entries, err := audit.ListByTicket(context.Background(), ticketID)
	if err != nil {
		t.Fatalf("ListByTicket failed: %v", err)
	}
	actions := make([]domain.AuditAction, len(entries))
	for i, e := range entries {
		actions[i] = e.Action
	}
	return actions
}

func TestRemediate_SuccessRecordsAttemptedThenSucceeded(t *testing.T) {
	stub := &playbookStub{response: map[string]any{"status": "triggered"}}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	orch, tickets, audit := newTestOrchestrator(t, srv.URL)
	ticket := ticketWithRun("run-1")
	if err := tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := orch.Remediate(context.Background(), ticket); err != nil {
		t.Fatalf("Remediate failed: %v", err)
	}

	actions := actionsFor(t, audit, ticket.ID)
	want := []domain.AuditAction{domain.ActionRemediationAttempted, domain.ActionRemediationSucceeded}
	if len(actions) != len(want) {
		t.Fatalf("Expected actions %v, got %v", want, actions)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("action[%d] = %s, want %s", i, actions[i], want[i])
		}
	}
	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != domain.TicketStatusInProgress {
		t.Errorf("Expected ticket status in_progress, got %s", stored.Status)
	}
	if stub.callCount() != 1 {
		t.Errorf("Expected 1 playbook call, got %d", stub.callCount())
	}
}

func TestRemediate_AttemptCeilingIsTerminal(t *testing.T) {
	stub := &playbookStub{response: map[string]any{}}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	orch, tickets, audit := newTestOrchestrator(t, srv.URL)
	ticket := ticketWithRun("run-ceiling")
	if err := tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// MaxRetries for GatewayTimeout in the test policy is 3.
	for i := 0; i < 3; i++ {
		if err := orch.Remediate(context.Background(), ticket); err != nil {
			t.Fatalf("Remediate %d failed: %v", i+1, err)
		}
	}

	// Fourth and fifth invocations must both stop at the ceiling without
	// touching the playbook again.
	before := outcomeCount(ticket.Kind, "max_retries")
	for i := 0; i < 2; i++ {
		err := orch.Remediate(context.Background(), ticket)
		if !errors.Is(err, ErrMaxRetries) {
			t.Fatalf("Expected ErrMaxRetries, got %v", err)
		}
	}
	if got := outcomeCount(ticket.Kind, "max_retries") - before; got != 2 {
		t.Errorf("Expected max_retries outcome counter +2, got +%v", got)
	}

	if stub.callCount() != 3 {
		t.Errorf("Expected exactly 3 playbook calls, got %d", stub.callCount())
	}

	counts := map[domain.AuditAction]int{}
	for _, a := range actionsFor(t, audit, ticket.ID) {
		counts[a]++
	}
	if counts[domain.ActionRemediationAttempted] != 3 {
		t.Errorf("Expected 3 attempted entries, got %d", counts[domain.ActionRemediationAttempted])
	}
	if counts[domain.ActionMaxRetriesReached] != 2 {
		t.Errorf("Expected 2 max-retries entries, got %d", counts[domain.ActionMaxRetriesReached])
	}
}

func TestRemediate_AttemptNumbersFromLedger(t *testing.T) {
	stub := &playbookStub{response: map[string]any{}}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	orch, tickets, _ := newTestOrchestrator(t, srv.URL)
	ticket := ticketWithRun("run-attempts")
	if err := tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := orch.Remediate(context.Background(), ticket); err != nil {
			t.Fatalf("Remediate %d failed: %v", i+1, err)
		}
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	for i, call := range stub.calls {
		if call.Attempt != i+1 {
			t.Errorf("call %d carried attempt %d, want %d", i, call.Attempt, i+1)
		}
		if call.MaxRetries != 3 {
			t.Errorf("call %d carried max_retries %d, want 3", i, call.MaxRetries)
		}
		if call.TicketID != ticket.ID {
			t.Errorf("call %d carried ticket %s, want %s", i, call.TicketID, ticket.ID)
		}
	}
}

func TestRemediate_FailureRecordsFailedWithoutRetrying(t *testing.T) {
	stub := &playbookStub{status: http.StatusBadRequest}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	orch, tickets, audit := newTestOrchestrator(t, srv.URL)
	ticket := ticketWithRun("run-fail")
	if err := tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := orch.Remediate(context.Background(), ticket); err == nil {
		t.Fatal("Expected error from failed playbook")
	}

	actions := actionsFor(t, audit, ticket.ID)
	want := []domain.AuditAction{domain.ActionRemediationAttempted, domain.ActionRemediationFailed}
	if len(actions) != len(want) || actions[0] != want[0] || actions[1] != want[1] {
		t.Errorf("Expected actions %v, got %v", want, actions)
	}
	if stub.callCount() != 1 {
		t.Errorf("Expected a single playbook call, got %d", stub.callCount())
	}
}

func TestRemediate_NewRunIDUpdatesTicket(t *testing.T) {
	stub := &playbookStub{response: map[string]any{"new_run_id": "run-respawned"}}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	orch, tickets, _ := newTestOrchestrator(t, srv.URL)
	ticket := ticketWithRun("run-old")
	if err := tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := orch.Remediate(context.Background(), ticket); err != nil {
		t.Fatalf("Remediate failed: %v", err)
	}

	got, err := tickets.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RunID == nil || *got.RunID != "run-respawned" {
		t.Errorf("Expected ticket run id run-respawned, got %v", got.RunID)
	}

	// The old run id no longer resolves; the new one does.
	if winner, _ := tickets.GetByRunID(context.Background(), "run-respawned"); winner == nil {
		t.Error("Expected new run id to resolve to the ticket")
	}
}

func TestRemediate_NotEligibleKind(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t, "")
	ticket := &domain.Ticket{ID: "GEN-x", Kind: domain.KindUnknown}

	if err := orch.Remediate(context.Background(), ticket); !errors.Is(err, ErrNotEligible) {
		t.Errorf("Expected ErrNotEligible, got %v", err)
	}
}

func TestRemediate_UnconfiguredPlaybookSkips(t *testing.T) {
	orch, tickets, audit := newTestOrchestrator(t, "")
	ticket := ticketWithRun("run-skip")
	if err := tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	before := outcomeCount(ticket.Kind, "skipped")
	if err := orch.Remediate(context.Background(), ticket); err != nil {
		t.Fatalf("Expected nil error on skip, got %v", err)
	}

	actions := actionsFor(t, audit, ticket.ID)
	if len(actions) != 1 || actions[0] != domain.ActionRemediationSkipped {
		t.Errorf("Expected a single skipped entry, got %v", actions)
	}
	if got := outcomeCount(ticket.Kind, "skipped") - before; got != 1 {
		t.Errorf("Expected skipped outcome counter +1, got +%v", got)
	}
}

func TestRemediate_NilRunIDStartsAtAttemptOne(t *testing.T) {
	stub := &playbookStub{response: map[string]any{}}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	orch, tickets, _ := newTestOrchestrator(t, srv.URL)
	ticket := &domain.Ticket{ID: "GEN-norun", Kind: domain.KindGatewayTimeout}
	if err := tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := orch.Remediate(context.Background(), ticket); err != nil {
		t.Fatalf("Remediate failed: %v", err)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.calls) != 1 || stub.calls[0].Attempt != 1 {
		t.Fatalf("Expected one call at attempt 1, got %+v", stub.calls)
	}
}
