package model

// HookEvent represents the outcome of a report run
type HookEvent string

const (
	HookReportSuccess HookEvent = "report_success"
	HookReportFailure HookEvent = "report_failure"
)

// ReportEvent contains information about a finished report run
type ReportEvent struct {
	Type       HookEvent
	Repository string
	WorkflowID int64
	Workflow   string
	OutputDir  string
	Files      []string
	Error      string
}
