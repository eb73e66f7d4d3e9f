// Package classify turns normalized failure text into a typed
// classification. An AI provider is the first tier; a deterministic
// keyword scan covers provider absence and every provider failure, so
// classification itself never errors.
package classify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
	"github.com/Balaji2106/demo-autoremediation/internal/infra/ai"
	"github.com/Balaji2106/demo-autoremediation/internal/metrics"
)

// Classifier classifies normalized failures.
type Classifier struct {
	provider ai.Provider // nil when no provider is configured
	timeout  time.Duration
	log      *slog.Logger
}

// New creates a classifier. provider may be nil.
func New(provider ai.Provider, timeout time.Duration, log *slog.Logger) *Classifier {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Classifier{provider: provider, timeout: timeout, log: log}
}

// aiResponse is the JSON contract the provider is prompted to return.
type aiResponse struct {
	RootCause        string   `json:"root_cause"`
	ErrorType        string   `json:"error_type"`
	Severity         string   `json:"severity"`
	Confidence       string   `json:"confidence"`
	AffectedEntity   string   `json:"affected_entity"`
	Recommendations  []string `json:"recommendations"`
	AutoHealPossible bool     `json:"auto_heal_possible"`
	AutoHealStrategy string   `json:"auto_heal_strategy"`
}

// Classify produces a classification for the failure. It never returns
// an error: any AI failure degrades to the keyword fallback.
func (c *Classifier) Classify(ctx context.Context, nf domain.NormalizedFailure) domain.Classification {
	if c.provider == nil {
		metrics.ClassificationFallbacks.Inc()
		return fallbackClassify(nf.ErrorText, "no AI provider configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.provider.Generate(ctx, buildPrompt(nf.ErrorText))
	metrics.ClassificationLatency.WithLabelValues(c.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		c.log.Warn("AI classification failed, using fallback",
			"provider", c.provider.Name(), "error", err)
		metrics.ClassificationFallbacks.Inc()
		return fallbackClassify(nf.ErrorText, err.Error())
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(ai.StripFences(raw)), &resp); err != nil {
		c.log.Warn("AI response is not valid JSON, using fallback",
			"provider", c.provider.Name(), "error", err)
		metrics.ClassificationFallbacks.Inc()
		return fallbackClassify(nf.ErrorText, "invalid JSON response")
	}

	cls := domain.Classification{
		Kind:             validateKind(resp.ErrorType),
		Severity:         validateSeverity(resp.Severity),
		Confidence:       validateConfidence(resp.Confidence),
		RootCause:        resp.RootCause,
		AffectedEntity:   resp.AffectedEntity,
		Recommendations:  resp.Recommendations,
		AutoHealPossible: resp.AutoHealPossible,
		Origin:           domain.OriginAI,
	}
	cls.Priority = domain.DerivePriority(cls.Severity)
	if cls.RootCause == "" {
		cls.RootCause = "No root cause provided"
	}
	return cls
}

var knownKinds = map[domain.ErrorKind]bool{
	domain.KindGatewayTimeout:              true,
	domain.KindHTTPConnectionFailed:        true,
	domain.KindThrottlingError:             true,
	domain.KindInternalServerError:         true,
	domain.KindUserErrorSourceBlobNotExist: true,
	domain.KindClusterStartFailure:         true,
	domain.KindDatabricksTimeout:           true,
	domain.KindDriverNotResponding:         true,
	domain.KindLibraryInstallationError:    true,
	domain.KindResourceExhausted:           true,
	domain.KindClusterTermination:          true,
}

// validateKind pins AI output to the known taxonomy so free-text types
// never reach the policy table.
func validateKind(s string) domain.ErrorKind {
	k := domain.ErrorKind(s)
	if knownKinds[k] {
		return k
	}
	return domain.KindUnknown
}

func validateSeverity(s string) domain.Severity {
	switch domain.Severity(s) {
	case domain.SeverityCritical, domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow:
		return domain.Severity(s)
	}
	return domain.SeverityMedium
}

func validateConfidence(s string) domain.Confidence {
	switch domain.Confidence(s) {
	case domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow:
		return domain.Confidence(s)
	}
	return domain.ConfidenceLow
}
