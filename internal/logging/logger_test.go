package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"swansong/internal/config"
	"swansong/internal/logging"
	"swansong/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("pipeline idle", logging.String(logging.FieldComponent, "test"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "swansong.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "pipeline idle") {
		t.Fatalf("expected log line in file, got %q", string(data))
	}
}

func TestWithContextAddsSessionFields(t *testing.T) {
	ctx := services.WithSessionID(t.Context(), "abc123")
	ctx = services.WithStage(ctx, "music")

	fields := logging.ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != logging.FieldSessionID || fields[0].Value.String() != "abc123" {
		t.Fatalf("unexpected session field: %v", fields[0])
	}
	if fields[1].Key != logging.FieldStage || fields[1].Value.String() != "music" {
		t.Fatalf("unexpected stage field: %v", fields[1])
	}
}
