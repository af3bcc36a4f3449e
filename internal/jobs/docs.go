// Package jobs provides scheduled background tasks for the custody service.
//
// Jobs are cron-based, using github.com/robfig/cron/v3 with the six-field format
// (seconds first).
//
// # Available Jobs
//
// ProjectionResyncJob runs the projector's corrective sweep, re-reading every
// linked delivery from the ledger and repairing orders whose projected status
// drifted. Reactive syncs after each accepted custody operation keep the
// projection fresh; the sweep catches what they missed.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(projector, cfg.ResyncSchedule, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Per-order failures are counted in the sweep result and logged by the projector.
// A sweep that fails as a whole is logged and retried on the next tick.
package jobs
