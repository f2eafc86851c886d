package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"swansong/internal/api"
	"swansong/internal/config"
	"swansong/internal/logging"
	"swansong/internal/pipeline"
	"swansong/internal/services/mailer"
	"swansong/internal/session"
)

// Daemon coordinates the session store, pipeline runner, and HTTP API, and
// enforces single-instance execution through a file lock.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  session.Store
	runner *pipeline.Runner
	mail   mailer.Service

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store session.Store, runner *pipeline.Runner, mail mailer.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || runner == nil || mail == nil {
		return nil, errors.New("daemon requires config, store, runner, and mail service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "swansongd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger.With(logging.String(logging.FieldComponent, "daemon")),
		store:    store,
		runner:   runner,
		mail:     mail,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, starts the pipeline runner, and begins
// serving the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another swansong daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.runner.Start(d.ctx); err != nil {
		d.releaseStart()
		return fmt.Errorf("start pipeline runner: %w", err)
	}
	if err := d.api.start(d.ctx); err != nil {
		d.runner.Stop()
		d.releaseStart()
		return err
	}

	d.running.Store(true)
	d.logger.Info("swansong daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) releaseStart() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx = nil
	d.cancel = nil
}

// Stop shuts down the HTTP API, waits for in-flight sessions, and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.runner.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("swansong daemon stopped")
}

// Close stops the daemon and releases the session store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports daemon runtime information.
func (d *Daemon) Status(ctx context.Context) api.StatusResponse {
	status := api.StatusResponse{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		StoreBackend: d.cfg.Store.Backend,
	}
	sessions, err := d.store.List(ctx)
	if err != nil {
		d.logger.Warn("failed to list sessions for status", logging.Error(err))
		return status
	}
	status.Sessions = api.CountsFromSummary(session.Summarize(sessions))
	return status
}

// Health aggregates store and stage readiness.
func (d *Daemon) Health(ctx context.Context) api.HealthResponse {
	resp := api.HealthResponse{Healthy: true, Store: "ok"}
	if err := d.store.Health(ctx); err != nil {
		resp.Healthy = false
		resp.Store = err.Error()
	}
	resp.Stages = api.StageHealthFromChecks(d.runner.Health(ctx))
	for _, stage := range resp.Stages {
		if !stage.Ready {
			resp.Healthy = false
		}
	}
	return resp
}
