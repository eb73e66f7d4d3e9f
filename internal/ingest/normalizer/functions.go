package normalizer

import "github.com/Balaji2106/demo-autoremediation/internal/core/domain"

// normalizeFunctions handles Azure Functions alert payloads.
func normalizeFunctions(payload map[string]any) domain.NormalizedFailure {
	essentials := getMap(getMap(payload, "data"), "essentials")
	if essentials == nil {
		essentials = getMap(payload, "essentials")
	}
	properties := getMap(getMap(getMap(payload, "data"), "alertContext"), "properties")

	name := firstNonEmpty(
		getString(properties, "FunctionName"),
		getString(essentials, "alertRule"),
		"Azure Function",
	)

	invocationID := firstNonEmpty(
		getString(properties, "InvocationId"),
		getString(essentials, "alertId"),
	)

	errorText := firstNonEmpty(
		getString(properties, "ExceptionMessage"),
		getString(properties, "ErrorMessage"),
		getString(essentials, "description"),
		"Azure Function failed. No detailed error message available.",
	)

	return domain.NormalizedFailure{
		Resource:  name,
		RunID:     optionalRunID(invocationID),
		ErrorText: errorText,
		Metadata: map[string]any{
			"function_app":   getString(properties, "FunctionAppName"),
			"exception_type": getString(properties, "ExceptionType"),
			"severity":       getString(essentials, "severity"),
			"timestamp":      getString(properties, "Timestamp"),
		},
	}
}
