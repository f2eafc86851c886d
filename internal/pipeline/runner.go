package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"swansong/internal/config"
	"swansong/internal/logging"
	"swansong/internal/services"
	"swansong/internal/session"
)

const fallbackStageTimeout = 5 * time.Minute

// Runner drives sessions through the configured stage sequence. Each launched
// session runs on its own goroutine; the runner tracks them so shutdown can
// wait for in-flight work.
type Runner struct {
	store    session.Store
	logger   *slog.Logger
	handlers []Handler
	timeouts map[string]time.Duration

	mu      sync.Mutex
	running bool
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunner builds a runner over the supplied store and ordered handlers.
func NewRunner(cfg *config.Config, store session.Store, logger *slog.Logger, handlers []Handler) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		store:  store,
		logger: logger.With(logging.String(logging.FieldComponent, "pipeline-runner")),
		timeouts: map[string]time.Duration{
			StageLyrics: time.Duration(cfg.Pipeline.LyricsTimeout) * time.Second,
			StageMusic:  time.Duration(cfg.Pipeline.MusicTimeout) * time.Second,
			StageVoice:  time.Duration(cfg.Pipeline.VoiceTimeout) * time.Second,
			StageVideo:  time.Duration(cfg.Pipeline.VideoTimeout) * time.Second,
		},
		handlers: handlers,
	}
}

// Start makes the runner accept launches. The supplied context bounds all
// session goroutines.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("pipeline runner already running")
	}
	if len(r.handlers) == 0 {
		return errors.New("pipeline stages not configured")
	}
	r.runCtx, r.cancel = context.WithCancel(ctx)
	r.running = true
	return nil
}

// Stop cancels in-flight sessions and waits for their goroutines to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
}

// Launch starts background processing for the session id and returns
// immediately.
func (r *Runner) Launch(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return errors.New("pipeline runner not running")
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(r.runCtx, id)
	}()
	return nil
}

// Health reports per-stage readiness in pipeline order.
func (r *Runner) Health(ctx context.Context) []Health {
	out := make([]Health, 0, len(r.handlers))
	for _, handler := range r.handlers {
		out = append(out, handler.HealthCheck(ctx))
	}
	return out
}

func (r *Runner) run(ctx context.Context, id string) {
	ctx = services.WithSessionID(ctx, id)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	runLogger := logging.WithContext(ctx, r.logger)
	runStart := time.Now()

	for i, handler := range r.handlers {
		stageCtx := services.WithStage(ctx, handler.Name())
		stageLogger := logging.WithContext(stageCtx, r.logger)

		sess, err := r.store.Update(stageCtx, id, func(s *session.Session) {
			s.Status = handler.ProcessingStatus()
		})
		if err != nil {
			stageLogger.Error("failed to transition session to processing", logging.Error(err))
			return
		}
		if sess == nil {
			stageLogger.Warn("session no longer exists, abandoning run")
			return
		}

		stageStart := time.Now()
		stageLogger.Info("stage started",
			logging.String(logging.FieldEventType, "stage_start"),
			logging.String("processing_status", string(handler.ProcessingStatus())),
		)

		timeout := r.stageTimeout(handler.Name())
		execCtx, cancel := context.WithTimeout(stageCtx, timeout)
		execErr := handler.Execute(execCtx, sess)
		cancel()

		if execErr != nil {
			if ctx.Err() != nil {
				stageLogger.Debug("stage interrupted by shutdown")
				return
			}
			if errors.Is(execErr, context.DeadlineExceeded) {
				execErr = services.Wrap(services.ErrTimeout, handler.Name(), "execute",
					fmt.Sprintf("stage timed out after %s", timeout), nil)
			}
			r.failSession(stageCtx, stageLogger, id, handler.Name(), execErr)
			return
		}

		apply := copyOutputs(sess)
		if i == len(r.handlers)-1 {
			// The final stage's outputs land in the same update as the ready
			// transition: a video URL must never be visible on a session that
			// is not yet ready.
			now := time.Now().UTC()
			outputs := apply
			apply = func(s *session.Session) {
				outputs(s)
				s.Status = session.StatusReady
				s.CompletedAt = &now
				if s.SingingURL == "" {
					s.SingingURL = s.MusicURL
				}
			}
		}
		if _, err := r.store.Update(stageCtx, id, apply); err != nil {
			stageLogger.Error("failed to persist stage result", logging.Error(err))
			return
		}
		stageLogger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("stage_duration", time.Since(stageStart)),
		)
	}

	runLogger.Info("session ready",
		logging.String(logging.FieldEventType, "session_ready"),
		logging.Duration("total_duration", time.Since(runStart)),
	)
}

func (r *Runner) failSession(ctx context.Context, logger *slog.Logger, id, stage string, stageErr error) {
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed without error detail", stage)
	}

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_message", message),
		logging.Error(stageErr),
	)

	if _, err := r.store.Update(ctx, id, func(s *session.Session) {
		s.SetFailed(stage, message)
	}); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
}

func (r *Runner) stageTimeout(name string) time.Duration {
	if timeout, ok := r.timeouts[name]; ok && timeout > 0 {
		return timeout
	}
	return fallbackStageTimeout
}

// copyOutputs merges the fields a stage produced back into the stored
// session. Outputs are append-only; empty fields never clobber stored values.
func copyOutputs(src *session.Session) func(*session.Session) {
	return func(dst *session.Session) {
		if src.Lyrics != "" {
			dst.Lyrics = src.Lyrics
		}
		if src.MusicURL != "" {
			dst.MusicURL = src.MusicURL
		}
		if src.SingingURL != "" {
			dst.SingingURL = src.SingingURL
		}
		if src.VideoURL != "" {
			dst.VideoURL = src.VideoURL
		}
	}
}
