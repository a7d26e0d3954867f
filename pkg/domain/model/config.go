package model

// ActionsConfig controls where workflow data is fetched from and which kinds
// of records are cached on disk.
type ActionsConfig struct {
	Repo              Repository
	CacheDir          string
	CacheWorkflows    bool
	CacheWorkflowRuns bool
	CacheRunJobs      bool
}

// ReportConfig selects the workflow runs a report is built from.
type ReportConfig struct {
	WorkflowID  int64
	Branch      string
	Event       string
	Limit       int
	TemplateDir string
	OutputDir   string
}

// Config represents the application configuration
type Config struct {
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig defines hooks for report events
type HooksConfig struct {
	ReportSuccess []Action `yaml:"report_success,omitempty"`
	ReportFailure []Action `yaml:"report_failure,omitempty"`
}

// For returns the actions configured for event
func (h HooksConfig) For(event HookEvent) []Action {
	switch event {
	case HookReportSuccess:
		return h.ReportSuccess
	case HookReportFailure:
		return h.ReportFailure
	default:
		return nil
	}
}
