package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains the HTTP bind address and the public base URL used to build
// shareable meeting links.
type Server struct {
	Bind    string `toml:"bind"`
	BaseURL string `toml:"base_url"`
}

// Store selects and configures the session store backend.
type Store struct {
	Backend string `toml:"backend"`
	DBPath  string `toml:"db_path"`
}

// Lyrics contains configuration for the external lyrics generation service.
type Lyrics struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Replicate contains connection settings and model pins for the generative
// media API backing the music, voice, and video stages.
type Replicate struct {
	APIToken            string `toml:"api_token"`
	BaseURL             string `toml:"base_url"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	MusicVersion        string `toml:"music_version"`
	VoiceVersion        string `toml:"voice_version"`
	VideoVersion        string `toml:"video_version"`
}

// Pipeline contains the ordered stage list and per-stage execution settings.
type Pipeline struct {
	Stages           []string `toml:"stages"`
	LyricsTimeout    int      `toml:"lyrics_timeout_seconds"`
	MusicTimeout     int      `toml:"music_timeout_seconds"`
	VoiceTimeout     int      `toml:"voice_timeout_seconds"`
	VideoTimeout     int      `toml:"video_timeout_seconds"`
	MusicStylePrompt string   `toml:"music_style_prompt"`
	TargetVoice      string   `toml:"target_voice"`
	DefaultAvatarURL string   `toml:"default_avatar_url"`
	MinLyricWords    int      `toml:"min_lyric_words"`
	MaxLyricWords    int      `toml:"max_lyric_words"`
}

// Mail contains configuration for the invite mail-sending API.
type Mail struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	From           string `toml:"from"`
	Subject        string `toml:"subject"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Paths contains directory configuration for logs and the daemon lock.
type Paths struct {
	LogDir  string `toml:"log_dir"`
	DataDir string `toml:"data_dir"`
}

// Config encapsulates all configuration values for swansong.
//
// Configuration sections by subsystem:
//   - Server: HTTP bind address and public base URL
//   - Store: session store backend (memory or sqlite)
//   - Lyrics: external lyrics generation service
//   - Replicate: generative media API credentials and model pins
//   - Pipeline: enabled stage order, timeouts, and stage inputs
//   - Mail: invite delivery API
//   - Logging: log format and level
//   - Paths: log and data directories
type Config struct {
	Server    Server    `toml:"server"`
	Store     Store     `toml:"store"`
	Lyrics    Lyrics    `toml:"lyrics"`
	Replicate Replicate `toml:"replicate"`
	Pipeline  Pipeline  `toml:"pipeline"`
	Mail      Mail      `toml:"mail"`
	Logging   Logging   `toml:"logging"`
	Paths     Paths     `toml:"paths"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/swansong/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path and the third reports whether a file was found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("swansong.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.DataDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MeetingLink builds the shareable public link for a meeting id.
func (c *Config) MeetingLink(id string) string {
	base := strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	return base + "/meeting/" + id
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
