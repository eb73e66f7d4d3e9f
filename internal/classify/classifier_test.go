package classify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
)

// stubProvider returns a canned response or error.
type stubProvider struct {
	response string
	err      error
}

func (p *stubProvider) Name() string { return "stub" }
func (p *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.response, p.err
}

func failure(text string) domain.NormalizedFailure {
	return domain.NormalizedFailure{Resource: "r", ErrorText: text, Metadata: map[string]any{}}
}

func TestClassify_FallbackKeywords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKind domain.ErrorKind
		wantHeal bool
	}{
		{"gateway timeout", "504 Gateway timeout from integration runtime", domain.KindGatewayTimeout, true},
		{"generic timeout", "operation timed out after 300s", domain.KindDatabricksTimeout, true},
		{"connection failed", "Connection to sql server failed", domain.KindHTTPConnectionFailed, true},
		{"throttling", "Request throttled by resource provider", domain.KindThrottlingError, true},
		{"cluster", "cluster failed to start", domain.KindClusterStartFailure, true},
		{"library", "could not install library foo", domain.KindLibraryInstallationError, true},
		{"package", "package resolution error", domain.KindLibraryInstallationError, true},
		{"unknown", "something unexpected happened", domain.KindUnknown, false},
	}

	c := New(nil, time.Second, slog.Default())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := c.Classify(context.Background(), failure(tt.text))

			if cls.Kind != tt.wantKind {
				t.Errorf("Classify(%q).Kind = %s, want %s", tt.text, cls.Kind, tt.wantKind)
			}
			if cls.AutoHealPossible != tt.wantHeal {
				t.Errorf("Classify(%q).AutoHealPossible = %v, want %v", tt.text, cls.AutoHealPossible, tt.wantHeal)
			}
			if cls.Origin != domain.OriginFallback {
				t.Errorf("Expected fallback origin, got %s", cls.Origin)
			}
			if cls.Severity != domain.SeverityMedium {
				t.Errorf("Expected Medium severity from fallback, got %s", cls.Severity)
			}
			if cls.Confidence != domain.ConfidenceLow {
				t.Errorf("Expected Low confidence from fallback, got %s", cls.Confidence)
			}
			if cls.Priority != domain.PriorityP3 {
				t.Errorf("Expected P3 from Medium severity, got %s", cls.Priority)
			}
		})
	}
}

func TestClassify_TimeoutKeywordBeatsCluster(t *testing.T) {
	// "timeout" is checked before "cluster" so a cluster timeout is a
	// timeout, not a start failure.
	c := New(nil, time.Second, slog.Default())
	cls := c.Classify(context.Background(), failure("cluster request timed out"))
	if cls.Kind != domain.KindDatabricksTimeout {
		t.Errorf("Expected DatabricksTimeoutError, got %s", cls.Kind)
	}
}

func TestClassify_AIResponse(t *testing.T) {
	provider := &stubProvider{response: `{
		"root_cause": "Integration runtime gateway timed out",
		"error_type": "GatewayTimeout",
		"severity": "High",
		"confidence": "High",
		"affected_entity": "daily-load",
		"recommendations": ["Retry the pipeline", "Check IR health"],
		"auto_heal_possible": true
	}`}

	c := New(provider, time.Second, slog.Default())
	cls := c.Classify(context.Background(), failure("gateway timeout"))

	if cls.Origin != domain.OriginAI {
		t.Fatalf("Expected AI origin, got %s", cls.Origin)
	}
	if cls.Kind != domain.KindGatewayTimeout {
		t.Errorf("Expected GatewayTimeout, got %s", cls.Kind)
	}
	if cls.Priority != domain.PriorityP2 {
		t.Errorf("Expected P2 derived from High severity, got %s", cls.Priority)
	}
	if len(cls.Recommendations) != 2 {
		t.Errorf("Expected 2 recommendations, got %d", len(cls.Recommendations))
	}
}

func TestClassify_AIResponseWithFences(t *testing.T) {
	provider := &stubProvider{response: "```json\n{\"error_type\": \"ThrottlingError\", \"severity\": \"Low\", \"confidence\": \"Medium\", \"root_cause\": \"throttled\", \"auto_heal_possible\": true}\n```"}

	c := New(provider, time.Second, slog.Default())
	cls := c.Classify(context.Background(), failure("throttled"))

	if cls.Origin != domain.OriginAI {
		t.Fatalf("Expected AI origin, got %s", cls.Origin)
	}
	if cls.Kind != domain.KindThrottlingError {
		t.Errorf("Expected ThrottlingError, got %s", cls.Kind)
	}
	if cls.Priority != domain.PriorityP4 {
		t.Errorf("Expected P4 from Low severity, got %s", cls.Priority)
	}
}

func TestClassify_AIErrorFallsBack(t *testing.T) {
	provider := &stubProvider{err: errors.New("endpoint unreachable")}

	c := New(provider, time.Second, slog.Default())
	cls := c.Classify(context.Background(), failure("request throttled"))

	if cls.Origin != domain.OriginFallback {
		t.Fatalf("Expected fallback origin, got %s", cls.Origin)
	}
	if cls.Kind != domain.KindThrottlingError {
		t.Errorf("Expected ThrottlingError from keywords, got %s", cls.Kind)
	}
}

func TestClassify_InvalidJSONFallsBack(t *testing.T) {
	provider := &stubProvider{response: "I think this is a timeout issue."}

	c := New(provider, time.Second, slog.Default())
	cls := c.Classify(context.Background(), failure("gateway timeout"))

	if cls.Origin != domain.OriginFallback {
		t.Fatalf("Expected fallback origin, got %s", cls.Origin)
	}
	if cls.Kind != domain.KindGatewayTimeout {
		t.Errorf("Expected GatewayTimeout from keywords, got %s", cls.Kind)
	}
}

func TestClassify_UnknownVocabularyPinned(t *testing.T) {
	provider := &stubProvider{response: `{
		"error_type": "SomethingNovel",
		"severity": "Catastrophic",
		"confidence": "Absolute",
		"root_cause": "x",
		"auto_heal_possible": false
	}`}

	c := New(provider, time.Second, slog.Default())
	cls := c.Classify(context.Background(), failure("weird"))

	if cls.Kind != domain.KindUnknown {
		t.Errorf("Expected Unknown kind for novel type, got %s", cls.Kind)
	}
	if cls.Severity != domain.SeverityMedium {
		t.Errorf("Expected Medium severity for invalid value, got %s", cls.Severity)
	}
	if cls.Confidence != domain.ConfidenceLow {
		t.Errorf("Expected Low confidence for invalid value, got %s", cls.Confidence)
	}
}

func TestDerivePriority(t *testing.T) {
	tests := []struct {
		sev  domain.Severity
		want domain.Priority
	}{
		{domain.SeverityCritical, domain.PriorityP1},
		{domain.SeverityHigh, domain.PriorityP2},
		{domain.SeverityMedium, domain.PriorityP3},
		{domain.SeverityLow, domain.PriorityP4},
		{domain.Severity("bogus"), domain.PriorityP3},
	}
	for _, tt := range tests {
		if got := domain.DerivePriority(tt.sev); got != tt.want {
			t.Errorf("DerivePriority(%s) = %s, want %s", tt.sev, got, tt.want)
		}
	}
}
