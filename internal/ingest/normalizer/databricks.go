package normalizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Balaji2106/demo-autoremediation/internal/core/domain"
)

// normalizeDatabricksJob handles job run failure webhooks.
func normalizeDatabricksJob(payload map[string]any) domain.NormalizedFailure {
	jobObj := getMap(payload, "job")
	runObj := getMap(payload, "run")
	state := getMap(runObj, "state")
	eventType := firstNonEmpty(getString(payload, "event"), getString(payload, "event_type"), "unknown")

	jobName := firstNonEmpty(
		getString(getMap(jobObj, "settings"), "name"),
		getString(runObj, "run_name"),
		getString(payload, "job_name"),
		"Databricks Job",
	)

	runID := firstNonEmpty(
		getString(runObj, "run_id"),
		getString(payload, "run_id"),
		getString(payload, "job_run_id"),
	)

	errorText := firstNonEmpty(
		getString(state, "state_message"),
		getString(runObj, "state_message"),
		getString(payload, "error_message"),
		fmt.Sprintf("Databricks job event: %s", eventType),
	)

	return domain.NormalizedFailure{
		Resource:  jobName,
		RunID:     optionalRunID(runID),
		ErrorText: errorText,
		Metadata: map[string]any{
			"job_id":           firstNonEmpty(getString(jobObj, "job_id"), getString(payload, "job_id")),
			"cluster_id":       getString(getMap(runObj, "cluster_instance"), "cluster_id"),
			"event_type":       eventType,
			"resource_type":    "job",
			"life_cycle_state": getString(state, "life_cycle_state"),
			"result_state":     getString(state, "result_state"),
		},
	}
}

// normalizeDatabricksCluster handles cluster termination and failure
// events. The termination reason code and parameters are folded into the
// error text because classification keys on them.
func normalizeDatabricksCluster(payload map[string]any) domain.NormalizedFailure {
	clusterObj := getMap(payload, "cluster")
	eventType := firstNonEmpty(getString(payload, "event"), getString(payload, "event_type"), "unknown")

	clusterName := firstNonEmpty(
		getString(clusterObj, "cluster_name"),
		getString(payload, "cluster_name"),
		"Databricks Cluster",
	)

	clusterID := firstNonEmpty(
		getString(clusterObj, "cluster_id"),
		getString(payload, "cluster_id"),
	)

	termination := getMap(clusterObj, "termination_reason")
	stateMessage := getString(clusterObj, "state_message")

	var errorText string
	if termination != nil {
		errorText = fmt.Sprintf("Cluster %s: %s. Reason: %s (%s)",
			eventType, stateMessage,
			getString(termination, "code"), getString(termination, "type"))
		if params := getMap(termination, "parameters"); len(params) > 0 {
			errorText += ". Details: " + renderParams(params)
		}
	} else {
		errorText = firstNonEmpty(stateMessage, fmt.Sprintf("Cluster %s", eventType))
	}

	return domain.NormalizedFailure{
		Resource:  clusterName,
		RunID:     optionalRunID(clusterID),
		ErrorText: errorText,
		Metadata: map[string]any{
			"cluster_id":       clusterID,
			"event_type":       eventType,
			"resource_type":    "cluster",
			"cluster_state":    getString(clusterObj, "state"),
			"termination_code": getString(termination, "code"),
			"termination_type": getString(termination, "type"),
			"driver_node_type": getString(clusterObj, "driver_node_type_id"),
			"num_workers":      getString(clusterObj, "num_workers"),
		},
	}
}

// normalizeDatabricksLibrary handles library installation failures.
func normalizeDatabricksLibrary(payload map[string]any) domain.NormalizedFailure {
	libraryObj := getMap(payload, "library")
	clusterObj := getMap(payload, "cluster")
	eventType := firstNonEmpty(getString(payload, "event"), getString(payload, "event_type"), "unknown")

	clusterName := firstNonEmpty(getString(clusterObj, "cluster_name"), "Unknown Cluster")
	clusterID := firstNonEmpty(getString(clusterObj, "cluster_id"), getString(payload, "cluster_id"))

	libraryName := firstNonEmpty(
		getString(getMap(libraryObj, "pypi"), "package"),
		getString(getMap(libraryObj, "maven"), "coordinates"),
		getString(libraryObj, "jar"),
		"Unknown Library",
	)

	errorText := firstNonEmpty(
		getString(payload, "error_message"),
		getString(payload, "message"),
		fmt.Sprintf("Library installation %s: %s", eventType, libraryName),
	)

	return domain.NormalizedFailure{
		Resource:  fmt.Sprintf("%s - %s", clusterName, libraryName),
		RunID:     optionalRunID(clusterID),
		ErrorText: errorText,
		Metadata: map[string]any{
			"cluster_id":    clusterID,
			"cluster_name":  clusterName,
			"library":       libraryName,
			"library_type":  libraryType(libraryObj),
			"event_type":    eventType,
			"resource_type": "library",
			"status":        getString(payload, "status"),
		},
	}
}

func libraryType(libraryObj map[string]any) string {
	if len(libraryObj) == 0 {
		return "unknown"
	}
	keys := make([]string, 0, len(libraryObj))
	for k := range libraryObj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

func renderParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, params[k]))
	}
	return strings.Join(parts, ", ")
}
