package normalizer

import (
	"testing"
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
)

func event(source domain.Source, payload map[string]any) domain.FailureEvent {
	return domain.FailureEvent{Source: source, Payload: payload, ReceivedAt: time.Now()}
}

func TestNormalize_ADF(t *testing.T) {
	payload := map[string]any{
		"data": map[string]any{
			"essentials": map[string]any{
				"alertRule": "adf-failures",
				"severity":  "Sev2",
			},
			"alertContext": map[string]any{
				"properties": map[string]any{
					"PipelineName":  "daily-load",
					"PipelineRunId": "run-123",
					"ErrorMessage":  "Operation on target Copy failed: GatewayTimeout",
					"ErrorCode":     "2200",
				},
			},
		},
	}

	nf := Normalize(event(domain.SourceADF, payload))

	if nf.Resource != "daily-load" {
		t.Errorf("Expected resource daily-load, got %s", nf.Resource)
	}
	if nf.RunID == nil || *nf.RunID != "run-123" {
		t.Errorf("Expected run id run-123, got %v", nf.RunID)
	}
	if nf.ErrorText != "Operation on target Copy failed: GatewayTimeout" {
		t.Errorf("Unexpected error text: %s", nf.ErrorText)
	}
	if nf.Metadata["error_code"] != "2200" {
		t.Errorf("Expected error_code 2200, got %v", nf.Metadata["error_code"])
	}
}

func TestNormalize_ADF_ErrorPriority(t *testing.T) {
	// The nested Error object beats the flat ErrorMessage field.
	payload := map[string]any{
		"properties": map[string]any{
			"PipelineName": "p",
			"Error":        map[string]any{"message": "detailed"},
			"ErrorMessage": "flat",
		},
	}

	nf := Normalize(event(domain.SourceADF, payload))
	if nf.ErrorText != "detailed" {
		t.Errorf("Expected nested message to win, got %s", nf.ErrorText)
	}
}

func TestNormalize_UnwrapForwardedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single quoted envelope",
			in:   "ErrorMessage='Gateway timed out after 30s' Forwarded to RCA system",
			want: "Gateway timed out after 30s",
		},
		{
			name: "message key",
			in:   "Message=connection failed to host Forwarded to RCA system",
			want: "connection failed to host",
		},
		{
			name: "no envelope",
			in:   "plain error text",
			want: "plain error text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := map[string]any{
				"properties": map[string]any{
					"PipelineName": "p",
					"ErrorMessage": tt.in,
				},
			}
			nf := Normalize(event(domain.SourceADF, payload))
			if nf.ErrorText != tt.want {
				t.Errorf("unwrap(%q) = %q, want %q", tt.in, nf.ErrorText, tt.want)
			}
		})
	}
}

func TestNormalize_DatabricksJob(t *testing.T) {
	payload := map[string]any{
		"event": "job_run_failed",
		"job": map[string]any{
			"job_id":   float64(42),
			"settings": map[string]any{"name": "nightly-etl"},
		},
		"run": map[string]any{
			"run_id": float64(98765),
			"state": map[string]any{
				"state_message":    "Cluster became unreachable: driver not responding",
				"life_cycle_state": "INTERNAL_ERROR",
			},
		},
	}

	nf := Normalize(event(domain.SourceDatabricksJob, payload))

	if nf.Resource != "nightly-etl" {
		t.Errorf("Expected resource nightly-etl, got %s", nf.Resource)
	}
	if nf.RunID == nil || *nf.RunID != "98765" {
		t.Errorf("Expected run id 98765, got %v", nf.RunID)
	}
	if nf.Metadata["job_id"] != "42" {
		t.Errorf("Expected job_id 42, got %v", nf.Metadata["job_id"])
	}
}

func TestNormalize_DatabricksCluster_TerminationReason(t *testing.T) {
	payload := map[string]any{
		"event": "cluster_terminated",
		"cluster": map[string]any{
			"cluster_name":  "shared-compute",
			"cluster_id":    "0812-xyz",
			"state_message": "Unexpected termination",
			"termination_reason": map[string]any{
				"code": "CLOUD_PROVIDER_LAUNCH_FAILURE",
				"type": "CLOUD_FAILURE",
			},
		},
	}

	nf := Normalize(event(domain.SourceDatabricksCluster, payload))

	if nf.Resource != "shared-compute" {
		t.Errorf("Expected resource shared-compute, got %s", nf.Resource)
	}
	want := "Cluster cluster_terminated: Unexpected termination. Reason: CLOUD_PROVIDER_LAUNCH_FAILURE (CLOUD_FAILURE)"
	if nf.ErrorText != want {
		t.Errorf("Unexpected error text:\n got %s\nwant %s", nf.ErrorText, want)
	}
}

func TestNormalize_DatabricksLibrary(t *testing.T) {
	payload := map[string]any{
		"event":   "library_install_failed",
		"cluster": map[string]any{"cluster_name": "ml-cluster", "cluster_id": "c-1"},
		"library": map[string]any{"pypi": map[string]any{"package": "pandas==2.1"}},
	}

	nf := Normalize(event(domain.SourceDatabricksLibrary, payload))

	if nf.Resource != "ml-cluster - pandas==2.1" {
		t.Errorf("Unexpected resource: %s", nf.Resource)
	}
	if nf.Metadata["library_type"] != "pypi" {
		t.Errorf("Expected library_type pypi, got %v", nf.Metadata["library_type"])
	}
}

func TestNormalize_GenericFallback(t *testing.T) {
	nf := Normalize(event(domain.SourceGeneric, map[string]any{
		"name":    "thing",
		"message": "it broke",
	}))

	if nf.Resource != "thing" || nf.ErrorText != "it broke" {
		t.Errorf("Unexpected generic extraction: %+v", nf)
	}
	if nf.RunID != nil {
		t.Errorf("Expected nil run id, got %v", *nf.RunID)
	}
}

func TestNormalize_MalformedPayloadDoesNotPanic(t *testing.T) {
	payloads := []map[string]any{
		nil,
		{},
		{"data": "not a map"},
		{"run": []any{"wrong", "shape"}},
		{"cluster": map[string]any{"termination_reason": "string not map"}},
	}

	for _, p := range payloads {
		for _, src := range []domain.Source{
			domain.SourceADF, domain.SourceDatabricksJob, domain.SourceDatabricksCluster,
			domain.SourceDatabricksLibrary, domain.SourceAzureFunctions,
			domain.SourceSynapse, domain.SourceGeneric,
		} {
			nf := Normalize(event(src, p))
			if nf.Resource == "" {
				t.Errorf("source %s: empty resource for payload %v", src, p)
			}
			if nf.Metadata == nil {
				t.Errorf("source %s: nil metadata for payload %v", src, p)
			}
		}
	}
}
