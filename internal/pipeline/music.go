package pipeline

import (
	"context"
	"strings"

	"swansong/internal/config"
	"swansong/internal/services"
	"swansong/internal/session"
)

// MusicStage turns the generated lyrics into a song through the pinned music
// model.
type MusicStage struct {
	predictions PredictionRunner
	model       string
	stylePrompt string
}

// NewMusicStage builds the music generation stage from configuration.
func NewMusicStage(cfg *config.Config, predictions PredictionRunner) *MusicStage {
	return &MusicStage{
		predictions: predictions,
		model:       strings.TrimSpace(cfg.Replicate.MusicVersion),
		stylePrompt: cfg.Pipeline.MusicStylePrompt,
	}
}

func (s *MusicStage) Name() string { return StageMusic }

func (s *MusicStage) ProcessingStatus() session.Status { return session.StatusGeneratingMusic }

func (s *MusicStage) Execute(ctx context.Context, sess *session.Session) error {
	if strings.TrimSpace(sess.Lyrics) == "" {
		return services.Wrap(services.ErrValidation, StageMusic, "generate music", "session has no lyrics to sing", nil)
	}
	url, err := s.predictions.Run(ctx, s.model, map[string]any{
		"prompt":       s.stylePrompt,
		"lyrics":       sess.Lyrics,
		"bitrate":      256000,
		"sample_rate":  44100,
		"audio_format": "wav",
	})
	if err != nil {
		return classifyPredictionError(StageMusic, "generate music", err)
	}
	sess.MusicURL = url
	return nil
}

func (s *MusicStage) HealthCheck(ctx context.Context) Health {
	return predictionHealth(StageMusic, s.predictions, s.model)
}
