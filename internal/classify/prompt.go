package classify

import "fmt"

const promptTemplate = `You are an expert AIOps engineer analyzing a production failure.

Analyze this error and provide a structured response in JSON format.

ERROR DETAILS:
%s

Please provide your analysis in the following JSON structure:
{
  "root_cause": "Clear explanation of what caused this error",
  "error_type": "Error classification (e.g., GatewayTimeout, DatabricksClusterStartFailure, etc.)",
  "severity": "Critical|High|Medium|Low",
  "confidence": "High|Medium|Low",
  "affected_entity": "What component/service/resource is affected",
  "recommendations": [
    "Specific actionable step 1",
    "Specific actionable step 2",
    "Specific actionable step 3"
  ],
  "auto_heal_possible": true or false,
  "auto_heal_strategy": "Description of automated recovery approach if applicable"
}

ERROR TYPE CLASSIFICATIONS (use these for error_type field):
- Azure Data Factory: GatewayTimeout, HttpConnectionFailed, ThrottlingError, UserErrorSourceBlobNotExists, InternalServerError
- Databricks: DatabricksClusterStartFailure, DatabricksTimeoutError, DatabricksDriverNotResponding, DatabricksLibraryInstallationError, DatabricksResourceExhausted, ClusterUnexpectedTermination

AUTO-HEAL ELIGIBILITY:
- Set auto_heal_possible to true ONLY if this error can be safely retried or automatically remediated
- Transient errors (timeouts, connection failures, throttling) are usually auto-healable
- Data corruption, permission errors, schema mismatches are NOT auto-healable

Return ONLY valid JSON, no additional text.`

func buildPrompt(errorText string) string {
	return fmt.Sprintf(promptTemplate, errorText)
}
