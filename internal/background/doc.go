// Package background provides the background execution context used by the
// persistent reminder channel.
//
// A Worker runs independently of any HTTP request. The foreground talks to
// it only by posting messages; it never replies. While a notification timer
// is pending the worker holds a keepalive token so that Stop waits for the
// notification to be shown.
//
// Basic usage:
//
//	worker := background.NewWorker(cfg, surface, clients, clock.Real{}, logger)
//	worker.Start()
//	defer worker.Stop(ctx)
//
//	<-worker.Ready()
//	err := worker.Post(background.NewScheduleMessage(req, notification))
package background
