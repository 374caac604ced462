// Package health probes the upstream model server on a schedule.
//
// A Checker runs named checks concurrently, each bounded by a timeout, and
// keeps the aggregated result of the latest round. A Scheduler drives the
// checker with robfig/cron:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("upstream", provider.HealthCheck)
//
//	scheduler, err := health.NewScheduler(checker, "@every 30s", func(s health.HealthStatus) {
//	    collector.UpdateUpstreamHealth(provider.GetName(), s.Healthy)
//	})
//	if err != nil {
//	    return err
//	}
//	if err := scheduler.Start(ctx); err != nil {
//	    return err
//	}
//	defer scheduler.Stop()
//
// GET /v1/health reports the latest round through Checker.Last and answers
// 503 when it failed.
package health
