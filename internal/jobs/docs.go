// Package jobs runs scheduled background work with github.com/robfig/cron/v3.
//
// # Available Jobs
//
// OfferExpiryJob sweeps pending offers whose acceptance window has elapsed,
// expires them with reason "deadline elapsed" and reopens jobs that have no
// pending offers left. The default schedule is every ten seconds.
//
// # Usage
//
//	expiry := jobs.NewOfferExpiryJob(expireHandler, "*/10 * * * * *", 100, logger)
//	manager := jobs.NewJobManager(logger, expiry)
//	if err := manager.StartAll(); err != nil {
//		return err
//	}
//	defer manager.StopAll()
//
// # Error Handling
//
// Offers resolved concurrently by a provider are skipped silently. Other
// failures are logged and retried on the next tick.
package jobs
