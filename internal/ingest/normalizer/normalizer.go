// Package normalizer flattens source-specific failure payloads into a
// common shape. Normalization never fails: unrecognized or malformed
// payloads degrade to a generic extraction rather than an error.
package normalizer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
)

// Monitoring systems frequently wrap the real message in a forwarding
// envelope like "ErrorMessage='...' Forwarded to RCA system". The inner
// text is what classification should see.
var forwardedEnvelope = regexp.MustCompile(`(?is)(ErrorMessage|Message)=(.+)Forwarded to RCA system`)

// Normalize maps a raw failure event into the common normalized form.
func Normalize(event domain.FailureEvent) domain.NormalizedFailure {
	var nf domain.NormalizedFailure
	switch event.Source {
	case domain.SourceADF:
		nf = normalizeADF(event.Payload)
	case domain.SourceDatabricksJob:
		nf = normalizeDatabricksJob(event.Payload)
	case domain.SourceDatabricksCluster:
		nf = normalizeDatabricksCluster(event.Payload)
	case domain.SourceDatabricksLibrary:
		nf = normalizeDatabricksLibrary(event.Payload)
	case domain.SourceAzureFunctions:
		nf = normalizeFunctions(event.Payload)
	case domain.SourceSynapse:
		nf = normalizeSynapse(event.Payload)
	default:
		nf = normalizeGeneric(event.Payload)
	}

	nf.ErrorText = unwrapForwarded(nf.ErrorText)
	if nf.Resource == "" {
		nf.Resource = "unknown"
	}
	if nf.Metadata == nil {
		nf.Metadata = map[string]any{}
	}
	return nf
}

// unwrapForwarded strips the RCA forwarding envelope when present.
func unwrapForwarded(text string) string {
	m := forwardedEnvelope.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	inner := strings.TrimSpace(m[2])
	inner = strings.Trim(inner, "'")
	return strings.TrimSpace(inner)
}

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return trimFloat(v)
	case json.Number:
		return v.String()
	case bool:
		return fmt.Sprintf("%t", v)
	}
	return ""
}

// trimFloat renders JSON numbers without a trailing ".000000" when they
// are integral, which is the common case for run and job identifiers.
func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// stringify produces a readable one-line rendering of an arbitrary value
// for use as fallback error text.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// optionalRunID returns a pointer only when the value is non-empty so
// absent run ids stay NULL downstream.
func optionalRunID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
