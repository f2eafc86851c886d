package pipeline

import (
	"context"
	"errors"
	"strings"

	"swansong/internal/config"
	"swansong/internal/services"
	"swansong/internal/services/lyrics"
	"swansong/internal/session"
)

// LyricsStage asks the lyrics service to write song lyrics for the employee
// and rejects results outside the configured word bounds.
type LyricsStage struct {
	generator LyricsGenerator
	baseURL   string
	minWords  int
	maxWords  int
}

// NewLyricsStage builds the lyric generation stage from configuration.
func NewLyricsStage(cfg *config.Config, generator LyricsGenerator) *LyricsStage {
	return &LyricsStage{
		generator: generator,
		baseURL:   strings.TrimSpace(cfg.Lyrics.BaseURL),
		minWords:  cfg.Pipeline.MinLyricWords,
		maxWords:  cfg.Pipeline.MaxLyricWords,
	}
}

func (s *LyricsStage) Name() string { return StageLyrics }

func (s *LyricsStage) ProcessingStatus() session.Status { return session.StatusGeneratingLyrics }

func (s *LyricsStage) Execute(ctx context.Context, sess *session.Session) error {
	if s.generator == nil {
		return services.Wrap(services.ErrConfiguration, StageLyrics, "generate lyrics", "lyrics service not configured", nil)
	}
	text, err := s.generator.Generate(ctx, sess.EmployeeName, sess.EmployeeInfo)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return err
		}
		return services.Wrap(services.ErrExternalService, StageLyrics, "generate lyrics", "lyrics service request failed", err)
	}
	if err := lyrics.Validate(text, s.minWords, s.maxWords); err != nil {
		return services.Wrap(services.ErrValidation, StageLyrics, "validate lyrics", err.Error(), nil)
	}
	sess.Lyrics = text
	return nil
}

func (s *LyricsStage) HealthCheck(ctx context.Context) Health {
	if s.generator == nil || s.baseURL == "" {
		return Unhealthy(StageLyrics, "lyrics service base URL not configured")
	}
	return Healthy(StageLyrics)
}
