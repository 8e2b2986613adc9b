package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"costwatch/pkg/config"
	"costwatch/pkg/logger"
	"costwatch/pkg/tasks"
)

// Job statuses
const (
	JobStatusScheduled = "scheduled"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Error variables
var (
	ErrJobNotFound = fmt.Errorf("job not found")
)

// ReportRunner executes one full report run
type ReportRunner interface {
	Run(ctx context.Context, forceRefresh bool) *tasks.RunSummary
}

// TaskScheduler runs the report pipeline on a cron schedule
type TaskScheduler struct {
	cron      *cron.Cron
	config    *config.Config
	ctx       context.Context
	runner    ReportRunner
	jobs      map[string]*ScheduledJob
	jobsMutex sync.RWMutex
}

// ScheduledJob represents a scheduled report job
type ScheduledJob struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Cron    string    `json:"cron"`
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run"`
	Status  string    `json:"status"`
	EntryID cron.EntryID
}

// NewTaskScheduler creates a scheduler with the configured report job
func NewTaskScheduler(ctx context.Context, cfg *config.Config, runner ReportRunner) (*TaskScheduler, error) {
	logger.Info("Initializing task scheduler")

	scheduler := &TaskScheduler{
		cron: cron.New(
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
		config: cfg,
		ctx:    ctx,
		runner: runner,
		jobs:   make(map[string]*ScheduledJob),
	}

	if cfg.Scheduler != nil && cfg.Scheduler.Enabled {
		job := &ScheduledJob{
			Name: "daily_cost_report",
			Cron: cfg.Scheduler.ReportCron,
		}
		if err := scheduler.AddJob(job); err != nil {
			return nil, fmt.Errorf("failed to add report job: %w", err)
		}
	}

	logger.Info("Task scheduler initialized", zap.Int("job_count", len(scheduler.jobs)))
	return scheduler, nil
}

// Start starts the scheduler and blocks until the context is cancelled
func (ts *TaskScheduler) Start() error {
	logger.Info("Starting task scheduler")

	ts.cron.Start()

	ts.jobsMutex.Lock()
	for _, job := range ts.jobs {
		if err := ts.updateJobNextRunTime(job); err != nil {
			logger.Warn("Failed to update next run time after start",
				zap.String("job_name", job.Name),
				zap.Error(err))
		}
	}
	ts.jobsMutex.Unlock()

	ts.logScheduledJobs()

	<-ts.ctx.Done()
	logger.Info("Task scheduler context cancelled")

	return nil
}

// Shutdown gracefully shuts down the scheduler
func (ts *TaskScheduler) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down task scheduler")

	cronCtx := ts.cron.Stop()

	select {
	case <-cronCtx.Done():
		logger.Info("All scheduled jobs completed")
	case <-ctx.Done():
		logger.Warn("Scheduler shutdown timeout, some jobs may still be running")
	}

	return nil
}

// AddJob adds a scheduled job
func (ts *TaskScheduler) AddJob(job *ScheduledJob) error {
	ts.jobsMutex.Lock()
	defer ts.jobsMutex.Unlock()

	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	entryID, err := ts.cron.AddFunc(job.Cron, ts.createJobFunction(job))
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	job.EntryID = entryID
	job.Status = JobStatusScheduled

	if err := ts.updateJobNextRunTime(job); err != nil {
		logger.Warn("Failed to update next run time", zap.String("job_name", job.Name), zap.Error(err))
	}

	ts.jobs[job.ID] = job

	logger.Info("Added scheduled job",
		zap.String("job_id", job.ID),
		zap.String("job_name", job.Name),
		zap.String("cron", job.Cron),
		zap.Time("next_run", job.NextRun),
	)

	return nil
}

// RemoveJob removes a scheduled job
func (ts *TaskScheduler) RemoveJob(jobID string) error {
	ts.jobsMutex.Lock()
	defer ts.jobsMutex.Unlock()

	job, exists := ts.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	ts.cron.Remove(job.EntryID)
	delete(ts.jobs, jobID)

	logger.Info("Removed scheduled job", zap.String("job_id", jobID), zap.String("job_name", job.Name))
	return nil
}

// GetJobs returns all scheduled jobs
func (ts *TaskScheduler) GetJobs() []*ScheduledJob {
	ts.jobsMutex.RLock()
	defer ts.jobsMutex.RUnlock()

	jobs := make([]*ScheduledJob, 0, len(ts.jobs))
	for _, job := range ts.jobs {
		ts.updateJobNextRunTime(job)
		jobs = append(jobs, job)
	}

	return jobs
}

// GetStatus returns scheduler status
func (ts *TaskScheduler) GetStatus() map[string]interface{} {
	ts.jobsMutex.RLock()
	defer ts.jobsMutex.RUnlock()

	return map[string]interface{}{
		"running":   ts.cron != nil,
		"job_count": len(ts.jobs),
		"entries":   len(ts.cron.Entries()),
		"timestamp": time.Now().UTC(),
	}
}

// createJobFunction creates the function executed on each cron tick
func (ts *TaskScheduler) createJobFunction(job *ScheduledJob) func() {
	return func() {
		logger.Info("Executing scheduled job", zap.String("job_id", job.ID), zap.String("job_name", job.Name))

		ts.updateJobStatus(job, JobStatusRunning)
		ts.updateJobLastRun(job, time.Now())

		summary := ts.runner.Run(ts.ctx, false)
		if summary.Failed > 0 {
			logger.Error("Scheduled report run had failures",
				zap.String("job_name", job.Name),
				zap.Int("failed", summary.Failed),
				zap.Int("succeeded", summary.Succeeded))
			ts.updateJobStatus(job, JobStatusFailed)
			return
		}

		logger.Info("Scheduled job completed successfully",
			zap.String("job_name", job.Name),
			zap.Duration("duration", summary.Duration),
			zap.Int("projects", len(summary.Projects)),
		)
		ts.updateJobStatus(job, JobStatusCompleted)
	}
}

// logScheduledJobs logs information about all scheduled jobs
func (ts *TaskScheduler) logScheduledJobs() {
	ts.jobsMutex.RLock()
	defer ts.jobsMutex.RUnlock()

	if len(ts.jobs) == 0 {
		logger.Info("No scheduled jobs configured")
		return
	}

	logger.Info("Active scheduled jobs:")
	for _, job := range ts.jobs {
		logger.Info("Scheduled job",
			zap.String("job_name", job.Name),
			zap.String("cron", job.Cron),
			zap.Time("next_run", job.NextRun),
			zap.String("status", job.Status),
		)
	}
}

// updateJobNextRunTime updates the next run time for a job
func (ts *TaskScheduler) updateJobNextRunTime(job *ScheduledJob) error {
	for _, entry := range ts.cron.Entries() {
		if entry.ID == job.EntryID {
			job.NextRun = entry.Next
			return nil
		}
	}

	// If not found in entries, try to parse cron expression manually
	if schedule, err := cron.ParseStandard(job.Cron); err == nil {
		job.NextRun = schedule.Next(time.Now())
		return nil
	} else {
		return fmt.Errorf("failed to parse cron expression %s: %w", job.Cron, err)
	}
}

func (ts *TaskScheduler) updateJobStatus(job *ScheduledJob, status string) {
	ts.jobsMutex.Lock()
	defer ts.jobsMutex.Unlock()
	job.Status = status
}

func (ts *TaskScheduler) updateJobLastRun(job *ScheduledJob, lastRun time.Time) {
	ts.jobsMutex.Lock()
	defer ts.jobsMutex.Unlock()
	job.LastRun = lastRun
}
