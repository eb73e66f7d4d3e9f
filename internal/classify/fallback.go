package classify

import (
	"fmt"
	"strings"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
)

// fallbackClassify produces a rule-based classification when no AI
// provider is available or the provider fails. Keyword checks run in a
// fixed order so overlapping matches stay deterministic.
func fallbackClassify(errorText, reason string) domain.Classification {
	lower := strings.ToLower(errorText)

	kind := domain.KindUnknown
	autoHeal := false

	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		if strings.Contains(lower, "gateway") {
			kind = domain.KindGatewayTimeout
		} else {
			kind = domain.KindDatabricksTimeout
		}
		autoHeal = true
	case strings.Contains(lower, "connection") && strings.Contains(lower, "failed"):
		kind = domain.KindHTTPConnectionFailed
		autoHeal = true
	case strings.Contains(lower, "throttl"):
		kind = domain.KindThrottlingError
		autoHeal = true
	case strings.Contains(lower, "cluster"):
		kind = domain.KindClusterStartFailure
		autoHeal = true
	case strings.Contains(lower, "library") || strings.Contains(lower, "package"):
		kind = domain.KindLibraryInstallationError
		autoHeal = true
	}

	severity := domain.SeverityMedium

	return domain.Classification{
		Kind:       kind,
		Severity:   severity,
		Priority:   domain.DerivePriority(severity),
		Confidence: domain.ConfidenceLow,
		RootCause: fmt.Sprintf("Error analysis failed (%s). Manual review required for: %s",
			reason, truncate(errorText, 200)),
		AffectedEntity: "Unknown",
		Recommendations: []string{
			"Review error logs for more details",
			"Check system health and connectivity",
			"Retry operation manually if appropriate",
		},
		AutoHealPossible: autoHeal,
		Origin:           domain.OriginFallback,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
