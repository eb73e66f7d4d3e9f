package domain

// ErrorKind is the typed failure taxonomy shared by the classifier and the
// remediation policy table.
type ErrorKind string

const (
	// Azure Data Factory kinds
	KindGatewayTimeout              ErrorKind = "GatewayTimeout"
	KindHTTPConnectionFailed        ErrorKind = "HttpConnectionFailed"
	KindThrottlingError             ErrorKind = "ThrottlingError"
	KindInternalServerError         ErrorKind = "InternalServerError"
	KindUserErrorSourceBlobNotExist ErrorKind = "UserErrorSourceBlobNotExists"

	// Databricks kinds
	KindClusterStartFailure      ErrorKind = "DatabricksClusterStartFailure"
	KindDatabricksTimeout        ErrorKind = "DatabricksTimeoutError"
	KindDriverNotResponding      ErrorKind = "DatabricksDriverNotResponding"
	KindLibraryInstallationError ErrorKind = "DatabricksLibraryInstallationError"
	KindResourceExhausted        ErrorKind = "DatabricksResourceExhausted"
	KindClusterTermination       ErrorKind = "ClusterUnexpectedTermination"

	KindUnknown ErrorKind = "Unknown"
)

// Severity of a classified failure.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Priority derived from severity.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
	PriorityP4 Priority = "P4"
)

// Confidence of a classification result.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// ClassificationOrigin records which tier produced the classification.
type ClassificationOrigin string

const (
	OriginAI       ClassificationOrigin = "ai"
	OriginFallback ClassificationOrigin = "fallback"
)

// Classification is the classifier output for a normalized failure.
// Priority is always derived from Severity via DerivePriority, never taken
// from the AI response.
type Classification struct {
	Kind             ErrorKind
	Severity         Severity
	Priority         Priority
	Confidence       Confidence
	RootCause        string
	AffectedEntity   string
	Recommendations  []string
	AutoHealPossible bool
	Origin           ClassificationOrigin
}

// DerivePriority maps severity to priority. Unknown severities map to P3.
func DerivePriority(sev Severity) Priority {
	switch sev {
	case SeverityCritical:
		return PriorityP1
	case SeverityHigh:
		return PriorityP2
	case SeverityMedium:
		return PriorityP3
	case SeverityLow:
		return PriorityP4
	default:
		return PriorityP3
	}
}

// SLASeconds returns the SLA window in seconds for a priority.
func SLASeconds(p Priority) int {
	switch p {
	case PriorityP1:
		return 900
	case PriorityP2:
		return 1800
	case PriorityP3:
		return 7200
	case PriorityP4:
		return 86400
	default:
		return 1800
	}
}
