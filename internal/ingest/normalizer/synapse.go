package normalizer

import "github.com/Balaji2106/demo-autoremediation/internal/core/domain"

// normalizeSynapse handles Synapse pipeline alert payloads.
func normalizeSynapse(payload map[string]any) domain.NormalizedFailure {
	essentials := getMap(getMap(payload, "data"), "essentials")
	if essentials == nil {
		essentials = getMap(payload, "essentials")
	}
	properties := getMap(getMap(getMap(payload, "data"), "alertContext"), "properties")

	pipeline := firstNonEmpty(
		getString(properties, "PipelineName"),
		getString(properties, "pipelineName"),
		getString(essentials, "alertRule"),
		"Synapse Pipeline",
	)

	runID := firstNonEmpty(
		getString(properties, "RunId"),
		getString(properties, "runId"),
		getString(essentials, "alertId"),
	)

	errorText := firstNonEmpty(
		getString(properties, "ErrorMessage"),
		getString(properties, "errorMessage"),
		getString(essentials, "description"),
		"Synapse pipeline failed. No detailed error message available.",
	)

	return domain.NormalizedFailure{
		Resource:  pipeline,
		RunID:     optionalRunID(runID),
		ErrorText: errorText,
		Metadata: map[string]any{
			"workspace_name": getString(properties, "WorkspaceName"),
			"activity_name":  getString(properties, "ActivityName"),
			"error_code":     getString(properties, "ErrorCode"),
			"severity":       getString(essentials, "severity"),
		},
	}
}
