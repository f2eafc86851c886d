package daemon

import (
	"context"
	"testing"

	"swansong/internal/logging"
	"swansong/internal/pipeline"
	"swansong/internal/session"
	"swansong/internal/testsupport"
)

func TestDaemonEnforcesSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	newDaemon := func() *Daemon {
		store := session.NewMemoryStore()
		runner := pipeline.NewRunner(cfg, store, logging.NewNop(), []pipeline.Handler{stubStage{}})
		d, err := New(cfg, store, runner, &mailStub{}, logging.NewNop())
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return d
	}

	first := newDaemon()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Close()

	second := newDaemon()
	defer second.Close()
	if err := second.Start(context.Background()); err == nil {
		t.Fatal("expected second daemon to fail acquiring the lock")
	}
}

func TestDaemonHealthAggregatesStoreAndStages(t *testing.T) {
	d := newTestDaemon(t, nil)

	health := d.Health(context.Background())
	if !health.Healthy {
		t.Fatalf("health = %+v, want healthy", health)
	}
	if health.Store != "ok" {
		t.Errorf("store health = %q", health.Store)
	}
	if len(health.Stages) != 1 || !health.Stages[0].Ready {
		t.Errorf("stages = %+v", health.Stages)
	}
}

func TestDaemonStopIsIdempotent(t *testing.T) {
	d := newTestDaemon(t, nil)
	d.Stop()
	d.Stop()
}
