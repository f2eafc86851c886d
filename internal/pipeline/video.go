package pipeline

import (
	"context"
	"strings"

	"swansong/internal/config"
	"swansong/internal/services"
	"swansong/internal/session"
)

// VideoStage animates the configured avatar image singing the finished track.
type VideoStage struct {
	predictions PredictionRunner
	model       string
	avatarURL   string
}

// NewVideoStage builds the avatar video stage from configuration.
func NewVideoStage(cfg *config.Config, predictions PredictionRunner) *VideoStage {
	return &VideoStage{
		predictions: predictions,
		model:       strings.TrimSpace(cfg.Replicate.VideoVersion),
		avatarURL:   cfg.Pipeline.DefaultAvatarURL,
	}
}

func (s *VideoStage) Name() string { return StageVideo }

func (s *VideoStage) ProcessingStatus() session.Status { return session.StatusGeneratingVideo }

func (s *VideoStage) Execute(ctx context.Context, sess *session.Session) error {
	audio := strings.TrimSpace(sess.SingingURL)
	if audio == "" {
		audio = strings.TrimSpace(sess.MusicURL)
	}
	if audio == "" {
		return services.Wrap(services.ErrValidation, StageVideo, "generate video", "session has no audio track", nil)
	}
	url, err := s.predictions.Run(ctx, s.model, map[string]any{
		"audio": audio,
		"image": s.avatarURL,
	})
	if err != nil {
		return classifyPredictionError(StageVideo, "generate video", err)
	}
	sess.VideoURL = url
	return nil
}

func (s *VideoStage) HealthCheck(ctx context.Context) Health {
	if s.avatarURL == "" {
		return Unhealthy(StageVideo, "default avatar URL not configured")
	}
	return predictionHealth(StageVideo, s.predictions, s.model)
}
