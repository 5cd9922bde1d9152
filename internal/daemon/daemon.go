// daemon/daemon.go - 守护进程
package daemon

import (
	"context"
	"sync"
	"time"

	"leverage/internal/server"
	"leverage/pkg/logger"
)

// Job is a background task owned by the daemon.
type Job interface {
	Start()
	Stop()
}

type Daemon struct {
	server  server.Server
	jobs    []Job
	logger  logger.Logger
	errCh   chan error
	stopped sync.Once
	wg      sync.WaitGroup
}

func NewDaemon(server server.Server, logger logger.Logger, jobs ...Job) *Daemon {
	return &Daemon{
		server: server,
		jobs:   jobs,
		logger: logger,
		errCh:  make(chan error, 1),
	}
}

// Start launches the HTTP server and every job. Server failures are
// reported on Errors.
func (d *Daemon) Start() {
	d.logger.Info("daemon started")

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.server.Start(); err != nil {
			d.logger.Error("http server stopped: %v", err)
			d.errCh <- err
		}
	}()

	for _, job := range d.jobs {
		job.Start()
	}
}

// Errors delivers a fatal server error.
func (d *Daemon) Errors() <-chan error {
	return d.errCh
}

// Stop shuts the server down gracefully and stops all jobs in reverse order.
func (d *Daemon) Stop(timeout time.Duration) {
	d.stopped.Do(func() {
		d.logger.Info("stopping daemon...")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := d.server.Shutdown(ctx); err != nil {
			d.logger.Error("failed to shut down http server: %v", err)
		}
		for i := len(d.jobs) - 1; i >= 0; i-- {
			d.jobs[i].Stop()
		}
		d.wg.Wait()
		d.logger.Info("daemon stopped")
	})
}
