package domain

// Source identifies the upstream platform that emitted a failure event.
type Source string

const (
	SourceADF                Source = "adf"
	SourceDatabricksJob      Source = "databricks-job"
	SourceDatabricksCluster  Source = "databricks-cluster"
	SourceDatabricksLibrary  Source = "databricks-library"
	SourceAzureFunctions     Source = "azure-functions"
	SourceSynapse            Source = "synapse"
	SourceGeneric            Source = "generic"
)

// ParseSource maps an inbound source tag to a known Source.
// Unrecognized tags degrade to SourceGeneric rather than failing.
func ParseSource(tag string) Source {
	switch Source(tag) {
	case SourceADF, SourceDatabricksJob, SourceDatabricksCluster,
		SourceDatabricksLibrary, SourceAzureFunctions, SourceSynapse:
		return Source(tag)
	default:
		return SourceGeneric
	}
}

// TicketPrefix returns the ticket id prefix used for this source.
func (s Source) TicketPrefix() string {
	switch s {
	case SourceADF:
		return "ADF"
	case SourceDatabricksJob, SourceDatabricksCluster, SourceDatabricksLibrary:
		return "DBX"
	case SourceAzureFunctions:
		return "FUNC"
	case SourceSynapse:
		return "SYN"
	default:
		return "GEN"
	}
}
