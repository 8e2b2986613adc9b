package tasks

import (
	"time"
)

// TaskStatus represents the status of a project report task
type TaskStatus string

const (
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// Stage names the pipeline stage a failure happened in
type Stage string

const (
	StageEstimate  Stage = "estimate"
	StageFetch     Stage = "fetch"
	StageAggregate Stage = "aggregate"
	StageDeliver   Stage = "deliver"
)

// ProjectResult holds the outcome of one project's report run
type ProjectResult struct {
	TaskID      string        `json:"task_id"`
	ProjectID   string        `json:"project_id"`
	Status      TaskStatus    `json:"status"`
	Stage       Stage         `json:"stage,omitempty"`
	ErrorKind   ErrorKind     `json:"error_kind,omitempty"`
	Message     string        `json:"message,omitempty"`
	Error       string        `json:"error,omitempty"`
	RepliesSent int           `json:"replies_sent"`
	// CacheDegraded marks a run that proceeded without writing cache
	CacheDegraded bool      `json:"cache_degraded,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	Duration      time.Duration `json:"duration"`
}

// RunSummary aggregates all project results of one invocation
type RunSummary struct {
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Duration    time.Duration   `json:"duration"`
	Projects    []ProjectResult `json:"projects"`
	Succeeded   int             `json:"succeeded"`
	Failed      int             `json:"failed"`
	Skipped     int             `json:"skipped"`
}

// ExitCode maps the run outcome to a process exit code: 0 when every
// project succeeded or was skipped, 1 when any project failed.
func (s *RunSummary) ExitCode() int {
	if s.Failed > 0 {
		return 1
	}
	return 0
}

func (s *RunSummary) tally() {
	s.Succeeded, s.Failed, s.Skipped = 0, 0, 0
	for _, p := range s.Projects {
		switch p.Status {
		case TaskStatusCompleted:
			s.Succeeded++
		case TaskStatusSkipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
}
