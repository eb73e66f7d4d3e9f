package normalizer

import "github.com/Balaji2106/demo-autoremediation/internal/core/domain"

// normalizeGeneric is the catch-all for unrecognized sources and
// payload shapes.
func normalizeGeneric(payload map[string]any) domain.NormalizedFailure {
	name := firstNonEmpty(
		getString(payload, "name"),
		getString(payload, "resource_name"),
		"Unknown Resource",
	)

	runID := firstNonEmpty(
		getString(payload, "id"),
		getString(payload, "resource_id"),
		getString(payload, "run_id"),
	)

	errorText := firstNonEmpty(
		getString(payload, "message"),
		getString(payload, "error_message"),
		stringify(payload),
	)

	return domain.NormalizedFailure{
		Resource:  name,
		RunID:     optionalRunID(runID),
		ErrorText: errorText,
		Metadata:  map[string]any{"resource_type": "generic"},
	}
}
