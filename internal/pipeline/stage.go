package pipeline

import (
	"context"
	"fmt"

	"swansong/internal/config"
	"swansong/internal/session"
)

// Stage names in the order they can appear in the configured pipeline.
const (
	StageLyrics = "lyrics"
	StageMusic  = "music"
	StageVoice  = "voice"
	StageVideo  = "video"
)

// Handler describes the contract the runner needs from each pipeline stage.
// Execute reads its inputs from the session snapshot and writes its outputs
// back onto it; the runner persists the result.
type Handler interface {
	Name() string
	ProcessingStatus() session.Status
	Execute(context.Context, *session.Session) error
	HealthCheck(context.Context) Health
}

// LyricsGenerator produces lyric text for an employee.
type LyricsGenerator interface {
	Generate(ctx context.Context, employeeName, employeeInfo string) (string, error)
}

// PredictionRunner runs a pinned generative model to completion and returns
// the output file URL.
type PredictionRunner interface {
	Run(ctx context.Context, model string, input map[string]any) (string, error)
}

// BuildHandlers constructs the stage handlers named by the configured stage
// list, in order.
func BuildHandlers(cfg *config.Config, generator LyricsGenerator, predictions PredictionRunner) ([]Handler, error) {
	handlers := make([]Handler, 0, len(cfg.Pipeline.Stages))
	for _, name := range cfg.Pipeline.Stages {
		switch name {
		case StageLyrics:
			handlers = append(handlers, NewLyricsStage(cfg, generator))
		case StageMusic:
			handlers = append(handlers, NewMusicStage(cfg, predictions))
		case StageVoice:
			handlers = append(handlers, NewVoiceStage(cfg, predictions))
		case StageVideo:
			handlers = append(handlers, NewVideoStage(cfg, predictions))
		default:
			return nil, fmt.Errorf("build pipeline: unknown stage %q", name)
		}
	}
	return handlers, nil
}
