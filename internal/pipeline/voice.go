package pipeline

import (
	"context"
	"errors"
	"strings"

	"swansong/internal/config"
	"swansong/internal/services"
	"swansong/internal/services/replicate"
	"swansong/internal/session"
)

// VoiceStage re-sings the generated track with the configured target voice.
// It is optional; when absent from the stage list the music output feeds the
// video stage directly.
type VoiceStage struct {
	predictions PredictionRunner
	model       string
	targetVoice string
}

// NewVoiceStage builds the voice conversion stage from configuration.
func NewVoiceStage(cfg *config.Config, predictions PredictionRunner) *VoiceStage {
	return &VoiceStage{
		predictions: predictions,
		model:       strings.TrimSpace(cfg.Replicate.VoiceVersion),
		targetVoice: cfg.Pipeline.TargetVoice,
	}
}

func (s *VoiceStage) Name() string { return StageVoice }

func (s *VoiceStage) ProcessingStatus() session.Status { return session.StatusConvertingVoice }

func (s *VoiceStage) Execute(ctx context.Context, sess *session.Session) error {
	if strings.TrimSpace(sess.MusicURL) == "" {
		return services.Wrap(services.ErrValidation, StageVoice, "convert voice", "session has no music track", nil)
	}
	url, err := s.predictions.Run(ctx, s.model, map[string]any{
		"source_audio":              sess.MusicURL,
		"target_singer":             s.targetVoice,
		"key_shift_mode":            0,
		"pitch_shift_control":       "Auto Shift",
		"diffusion_inference_steps": 1000,
	})
	if err != nil {
		return classifyPredictionError(StageVoice, "convert voice", err)
	}
	sess.SingingURL = url
	return nil
}

func (s *VoiceStage) HealthCheck(ctx context.Context) Health {
	return predictionHealth(StageVoice, s.predictions, s.model)
}

// classifyPredictionError maps prediction client failures onto the error
// taxonomy the failure handler reports from.
func classifyPredictionError(stage, operation string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	case replicate.IsOutputMissing(err):
		return services.Wrap(services.ErrOutputMissing, stage, operation, "model produced no output URL", err)
	default:
		return services.Wrap(services.ErrExternalService, stage, operation, "prediction failed", err)
	}
}

func predictionHealth(stage string, predictions PredictionRunner, model string) Health {
	if predictions == nil {
		return Unhealthy(stage, "prediction client not configured")
	}
	if model == "" {
		return Unhealthy(stage, "model version not pinned")
	}
	return Healthy(stage)
}
