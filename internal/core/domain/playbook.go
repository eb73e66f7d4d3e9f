package domain

// PlaybookType tags an external automated-recovery action. The core only
// resolves a type to a configured endpoint; the action itself is owned by
// an independently deployed playbook service.
type PlaybookType string

const (
	PlaybookRetryPipeline      PlaybookType = "retry_pipeline"
	PlaybookRerunUpstream      PlaybookType = "rerun_upstream"
	PlaybookRestartCluster     PlaybookType = "restart_cluster"
	PlaybookRetryJob           PlaybookType = "retry_job"
	PlaybookReinstallLibraries PlaybookType = "reinstall_libraries"
	PlaybookScaleCluster       PlaybookType = "scale_cluster"
)
