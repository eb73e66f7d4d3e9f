package normalizer

import "github.com/Balaji2106/demo-autoremediation/internal/core/domain"

// normalizeADF handles Azure Data Factory alert payloads, both the
// Azure Monitor common alert schema and flat webhook shapes.
func normalizeADF(payload map[string]any) domain.NormalizedFailure {
	essentials := getMap(getMap(payload, "data"), "essentials")
	if essentials == nil {
		essentials = getMap(payload, "essentials")
	}
	alertContext := getMap(getMap(payload, "data"), "alertContext")
	properties := getMap(alertContext, "properties")
	if properties == nil {
		properties = getMap(payload, "properties")
	}

	pipeline := firstNonEmpty(
		getString(properties, "PipelineName"),
		getString(properties, "pipelineName"),
		getString(essentials, "alertRule"),
		getString(essentials, "pipelineName"),
		"ADF Pipeline",
	)

	runID := firstNonEmpty(
		getString(properties, "PipelineRunId"),
		getString(properties, "pipelineRunId"),
		getString(properties, "RunId"),
		getString(properties, "runId"),
		getString(essentials, "alertId"),
	)

	errorObj := getMap(properties, "Error")
	if errorObj == nil {
		errorObj = getMap(properties, "error")
	}

	errorText := firstNonEmpty(
		getString(errorObj, "message"),
		getString(errorObj, "Message"),
		getString(properties, "ErrorMessage"),
		getString(properties, "errorMessage"),
		getString(properties, "detailedMessage"),
		getString(properties, "message"),
		getString(essentials, "description"),
		"ADF pipeline failed. No detailed error message available.",
	)

	return domain.NormalizedFailure{
		Resource:  pipeline,
		RunID:     optionalRunID(runID),
		ErrorText: errorText,
		Metadata: map[string]any{
			"activity_name": firstNonEmpty(getString(properties, "ActivityName"), getString(properties, "activityName")),
			"activity_type": firstNonEmpty(getString(properties, "ActivityType"), getString(properties, "activityType")),
			"error_code": firstNonEmpty(
				getString(errorObj, "errorCode"),
				getString(properties, "ErrorCode"),
				getString(properties, "errorCode"),
			),
			"failure_type": firstNonEmpty(getString(errorObj, "failureType"), getString(errorObj, "FailureType")),
			"severity":     getString(essentials, "severity"),
			"fired_time":   getString(essentials, "firedDateTime"),
		},
	}
}
