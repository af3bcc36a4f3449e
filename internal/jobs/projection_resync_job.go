package jobs

import (
	"context"
	"log/slog"

	"custody/internal/core/application/projector"

	"github.com/robfig/cron/v3"
)

// DefaultResyncSchedule runs the corrective sweep once a minute, at second zero.
const DefaultResyncSchedule = "0 * * * * *"

// Sweeper repairs drift between the order projection and the ledger.
type Sweeper interface {
	Sweep(ctx context.Context) (projector.SweepResult, error)
}

// ProjectionResyncJob runs the projector's corrective sweep on a cron schedule.
// A sweep still running when the next tick fires causes that tick to be skipped.
type ProjectionResyncJob struct {
	sweeper  Sweeper
	schedule string
	cron     *cron.Cron
	cancel   context.CancelFunc
	logger   *slog.Logger
}

// NewProjectionResyncJob creates the job. The schedule uses the six-field cron
// format with seconds; an empty schedule falls back to DefaultResyncSchedule.
func NewProjectionResyncJob(sweeper Sweeper, schedule string, logger *slog.Logger) *ProjectionResyncJob {
	if schedule == "" {
		schedule = DefaultResyncSchedule
	}
	logger = logger.With("component", "projection_resync_job")

	return &ProjectionResyncJob{
		sweeper:  sweeper,
		schedule: schedule,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
		),
		logger: logger,
	}
}

// Start registers the sweep and starts the scheduler.
func (j *ProjectionResyncJob) Start() error {
	ctx, cancel := context.WithCancel(context.Background())

	_, err := j.cron.AddFunc(j.schedule, func() {
		result, err := j.sweeper.Sweep(ctx)
		if err != nil {
			j.logger.ErrorContext(ctx, "Projection resync failed", "error", err)
			return
		}
		if result.Repaired > 0 || result.Failed > 0 {
			j.logger.InfoContext(ctx, "Projection resync repaired orders",
				"scanned", result.Scanned, "repaired", result.Repaired, "failed", result.Failed)
		}
	})
	if err != nil {
		cancel()
		return err
	}

	j.cancel = cancel
	j.cron.Start()
	j.logger.InfoContext(ctx, "Projection resync job started", "schedule", j.schedule)
	return nil
}

// Stop cancels a running sweep and waits for it to return.
func (j *ProjectionResyncJob) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Projection resync job stopped")
}

// cronLogger adapts slog to the logger interface of the cron scheduler.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
