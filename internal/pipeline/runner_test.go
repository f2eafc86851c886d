package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"swansong/internal/config"
	"swansong/internal/logging"
	"swansong/internal/pipeline"
	"swansong/internal/session"
)

type fakeHandler struct {
	name    string
	status  session.Status
	execute func(context.Context, *session.Session) error
	health  pipeline.Health

	mu    sync.Mutex
	calls int
}

func (f *fakeHandler) Name() string { return f.name }

func (f *fakeHandler) ProcessingStatus() session.Status { return f.status }

func (f *fakeHandler) Execute(ctx context.Context, sess *session.Session) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.execute != nil {
		return f.execute(ctx, sess)
	}
	return nil
}

func (f *fakeHandler) HealthCheck(ctx context.Context) pipeline.Health {
	if f.health.Name != "" {
		return f.health
	}
	return pipeline.Healthy(f.name)
}

func (f *fakeHandler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestRunner(t *testing.T, store session.Store, handlers ...pipeline.Handler) *pipeline.Runner {
	t.Helper()
	cfg := config.Default()
	cfg.Pipeline.MusicTimeout = 1
	runner := pipeline.NewRunner(&cfg, store, logging.NewNop(), handlers)
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(runner.Stop)
	return runner
}

func waitForTerminal(t *testing.T, store session.Store, id string) *session.Session {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		sess, err := store.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if sess != nil && sess.Status.IsTerminal() {
			return sess
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session never reached a terminal status")
	return nil
}

func TestRunnerAdvancesSessionToReady(t *testing.T) {
	store := session.NewMemoryStore()
	defer store.Close()

	var order []string
	var orderMu sync.Mutex
	record := func(name string) {
		orderMu.Lock()
		order = append(order, name)
		orderMu.Unlock()
	}

	handlers := []pipeline.Handler{
		&fakeHandler{name: pipeline.StageLyrics, status: session.StatusGeneratingLyrics,
			execute: func(ctx context.Context, sess *session.Session) error {
				record(pipeline.StageLyrics)
				sess.Lyrics = "goodbye dear colleague your desk is now free"
				return nil
			}},
		&fakeHandler{name: pipeline.StageMusic, status: session.StatusGeneratingMusic,
			execute: func(ctx context.Context, sess *session.Session) error {
				record(pipeline.StageMusic)
				if sess.Lyrics == "" {
					t.Error("music stage ran before lyrics were stored")
				}
				sess.MusicURL = "https://cdn.example.com/song.wav"
				return nil
			}},
		&fakeHandler{name: pipeline.StageVideo, status: session.StatusGeneratingVideo,
			execute: func(ctx context.Context, sess *session.Session) error {
				record(pipeline.StageVideo)
				sess.VideoURL = "https://cdn.example.com/farewell.mp4"
				return nil
			}},
	}
	runner := newTestRunner(t, store, handlers...)

	created, err := store.Create(context.Background(), "John Doe", "sales rep, missed quota")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := runner.Launch(created.ID); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	sess := waitForTerminal(t, store, created.ID)
	if sess.Status != session.StatusReady {
		t.Fatalf("status = %s, want ready (error: %s)", sess.Status, sess.ErrorMessage)
	}
	if sess.VideoURL != "https://cdn.example.com/farewell.mp4" {
		t.Errorf("video url = %q", sess.VideoURL)
	}
	if sess.SingingURL != sess.MusicURL {
		t.Errorf("singing url = %q, want music url %q carried over", sess.SingingURL, sess.MusicURL)
	}
	if sess.CompletedAt == nil {
		t.Error("completed timestamp not set")
	} else if sess.CompletedAt.Before(sess.CreatedAt) {
		t.Errorf("completed at %s precedes created at %s", sess.CompletedAt, sess.CreatedAt)
	}
	orderMu.Lock()
	defer orderMu.Unlock()
	want := []string{pipeline.StageLyrics, pipeline.StageMusic, pipeline.StageVideo}
	if len(order) != len(want) {
		t.Fatalf("stage order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("stage order = %v, want %v", order, want)
		}
	}
}

// snapshotStore records the result of every Update so tests can assert on
// each state a poller could have observed.
type snapshotStore struct {
	session.Store

	mu        sync.Mutex
	snapshots []*session.Session
}

func (s *snapshotStore) Update(ctx context.Context, id string, apply func(*session.Session)) (*session.Session, error) {
	sess, err := s.Store.Update(ctx, id, apply)
	if sess != nil {
		s.mu.Lock()
		s.snapshots = append(s.snapshots, sess.Clone())
		s.mu.Unlock()
	}
	return sess, err
}

func TestRunnerNeverExposesVideoURLBeforeReady(t *testing.T) {
	store := &snapshotStore{Store: session.NewMemoryStore()}
	defer store.Close()

	handlers := []pipeline.Handler{
		&fakeHandler{name: pipeline.StageLyrics, status: session.StatusGeneratingLyrics,
			execute: func(ctx context.Context, sess *session.Session) error {
				sess.Lyrics = "one last standup one last retro goodbye"
				return nil
			}},
		&fakeHandler{name: pipeline.StageMusic, status: session.StatusGeneratingMusic,
			execute: func(ctx context.Context, sess *session.Session) error {
				sess.MusicURL = "https://cdn.example.com/song.wav"
				return nil
			}},
		&fakeHandler{name: pipeline.StageVideo, status: session.StatusGeneratingVideo,
			execute: func(ctx context.Context, sess *session.Session) error {
				sess.VideoURL = "https://cdn.example.com/farewell.mp4"
				return nil
			}},
	}
	runner := newTestRunner(t, store, handlers...)

	created, err := store.Create(context.Background(), "Alex Kim", "support lead")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := runner.Launch(created.ID); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	waitForTerminal(t, store, created.ID)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.snapshots) == 0 {
		t.Fatal("no store updates observed")
	}
	for i, snap := range store.snapshots {
		if snap.VideoURL != "" && snap.Status != session.StatusReady {
			t.Fatalf("update %d: video url %q visible while status %s", i, snap.VideoURL, snap.Status)
		}
	}
	final := store.snapshots[len(store.snapshots)-1]
	if final.Status != session.StatusReady || final.VideoURL == "" {
		t.Fatalf("final update = %+v, want ready with video url", final)
	}
}

func TestRunnerStopsAtFailedStage(t *testing.T) {
	store := session.NewMemoryStore()
	defer store.Close()

	video := &fakeHandler{name: pipeline.StageVideo, status: session.StatusGeneratingVideo}
	handlers := []pipeline.Handler{
		&fakeHandler{name: pipeline.StageLyrics, status: session.StatusGeneratingLyrics,
			execute: func(ctx context.Context, sess *session.Session) error {
				sess.Lyrics = "short but sweet farewell tune for the leaver"
				return nil
			}},
		&fakeHandler{name: pipeline.StageMusic, status: session.StatusGeneratingMusic,
			execute: func(ctx context.Context, sess *session.Session) error {
				return errors.New("model melted down")
			}},
		video,
	}
	runner := newTestRunner(t, store, handlers...)

	created, err := store.Create(context.Background(), "Jane Doe", "engineer")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := runner.Launch(created.ID); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	sess := waitForTerminal(t, store, created.ID)
	if sess.Status != session.StatusFailed {
		t.Fatalf("status = %s, want failed", sess.Status)
	}
	if sess.FailedStage != pipeline.StageMusic {
		t.Errorf("failed stage = %q, want music", sess.FailedStage)
	}
	if !strings.Contains(sess.ErrorMessage, "model melted down") {
		t.Errorf("error message = %q", sess.ErrorMessage)
	}
	if sess.Lyrics == "" {
		t.Error("lyrics from the completed stage were lost")
	}
	if video.callCount() != 0 {
		t.Error("video stage ran after an earlier stage failed")
	}
}

func TestRunnerTimesOutSlowStage(t *testing.T) {
	store := session.NewMemoryStore()
	defer store.Close()

	handlers := []pipeline.Handler{
		&fakeHandler{name: pipeline.StageMusic, status: session.StatusGeneratingMusic,
			execute: func(ctx context.Context, sess *session.Session) error {
				<-ctx.Done()
				return ctx.Err()
			}},
	}
	runner := newTestRunner(t, store, handlers...)

	created, err := store.Create(context.Background(), "Slow Jam", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := runner.Launch(created.ID); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	sess := waitForTerminal(t, store, created.ID)
	if sess.Status != session.StatusFailed {
		t.Fatalf("status = %s, want failed", sess.Status)
	}
	if sess.FailedStage != pipeline.StageMusic {
		t.Errorf("failed stage = %q", sess.FailedStage)
	}
	if !strings.Contains(sess.ErrorMessage, "timed out") {
		t.Errorf("error message = %q, want timeout detail", sess.ErrorMessage)
	}
}

func TestRunnerLaunchRequiresStart(t *testing.T) {
	store := session.NewMemoryStore()
	defer store.Close()

	cfg := config.Default()
	runner := pipeline.NewRunner(&cfg, store, logging.NewNop(), []pipeline.Handler{
		&fakeHandler{name: pipeline.StageLyrics, status: session.StatusGeneratingLyrics},
	})
	if err := runner.Launch("whatever"); err == nil {
		t.Fatal("expected error launching before Start")
	}
}

func TestRunnerHealthReportsPerStage(t *testing.T) {
	store := session.NewMemoryStore()
	defer store.Close()

	handlers := []pipeline.Handler{
		&fakeHandler{name: pipeline.StageLyrics, status: session.StatusGeneratingLyrics},
		&fakeHandler{name: pipeline.StageMusic, status: session.StatusGeneratingMusic,
			health: pipeline.Unhealthy(pipeline.StageMusic, "token missing")},
	}
	runner := newTestRunner(t, store, handlers...)

	checks := runner.Health(context.Background())
	if len(checks) != 2 {
		t.Fatalf("health checks = %d, want 2", len(checks))
	}
	if !checks[0].Ready {
		t.Errorf("lyrics stage unexpectedly unhealthy: %s", checks[0].Detail)
	}
	if checks[1].Ready || checks[1].Detail != "token missing" {
		t.Errorf("music health = %+v", checks[1])
	}
}
