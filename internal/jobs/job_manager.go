package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	projectionResyncJob *ProjectionResyncJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(sweeper Sweeper, resyncSchedule string, logger *slog.Logger) *JobManager {
	return &JobManager{
		projectionResyncJob: NewProjectionResyncJob(sweeper, resyncSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.projectionResyncJob.Start(); err != nil {
		return fmt.Errorf("failed to start projection resync job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.projectionResyncJob.Stop()
}
