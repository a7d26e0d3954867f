package model

// ConclusionStats tallies conclusions over a collection of runs or jobs.
// Count is the collection size; buckets only cover the conclusions tracked by
// the producer, so their sum can be lower than Count.
type ConclusionStats struct {
	Count     int `json:"count"`
	Success   int `json:"success"`
	Failure   int `json:"failure"`
	Cancelled int `json:"cancelled"`
	Skipped   int `json:"skipped"`
	TimedOut  int `json:"timedOut"`
	Neutral   int `json:"neutral"`
}

// Tracked returns the sum of all buckets.
func (s ConclusionStats) Tracked() int {
	return s.Success + s.Failure + s.Cancelled + s.Skipped + s.TimedOut + s.Neutral
}

// RunStats is the derived view of one workflow run and its jobs.
type RunStats struct {
	Run              *WorkflowRun          `json:"run"`
	Jobs             []*RunJob             `json:"jobs"`
	FirstStarted     *RunJob               `json:"firstStarted"`
	LastStarted      *RunJob               `json:"lastStarted"`
	FirstCompleted   *RunJob               `json:"firstCompleted"`
	LastCompleted    *RunJob               `json:"lastCompleted"`
	QueuedTime       string                `json:"queuedTime"`
	CompletionTime   string                `json:"completionTime"`
	Conclusion       Conclusion            `json:"conclusion"`
	Conclusions      map[string]Conclusion `json:"conclusions"`
	ConclusionsStats ConclusionStats       `json:"conclusionsStats"`
}

// WorkflowStats aggregates all fetched runs of a workflow.
type WorkflowStats struct {
	Repository      string                      `json:"repository"`
	Workflow        *Workflow                   `json:"workflow"`
	Conclusions     ConclusionStats             `json:"conclusions"`
	JobsConclusions map[string]*ConclusionStats `json:"jobsConclusions"`
	RunStats        []*RunStats                 `json:"runStats"`
	Runs            []*WorkflowRun              `json:"runs"`
}

// JobStats follows one job name across the runs of a workflow.
type JobStats struct {
	Name     string    `json:"name"`
	Workflow *Workflow `json:"workflow"`
	Runs     []JobRun  `json:"runs"`
}

type JobRun struct {
	Run *WorkflowRun `json:"run"`
	Job *RunJob      `json:"job"`
}
