package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeStore()
	c.normalizeLyrics()
	c.normalizeReplicate()
	c.normalizePipeline()
	c.normalizeMail()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaultBaseURL
	}
}

func (c *Config) normalizeStore() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	c.Store.DBPath = strings.TrimSpace(c.Store.DBPath)
}

func (c *Config) normalizeLyrics() {
	c.Lyrics.BaseURL = strings.TrimRight(strings.TrimSpace(c.Lyrics.BaseURL), "/")
	if c.Lyrics.BaseURL == "" {
		c.Lyrics.BaseURL = defaultLyricsBaseURL
	}
	if c.Lyrics.TimeoutSeconds <= 0 {
		c.Lyrics.TimeoutSeconds = defaultLyricsTimeoutSeconds
	}
}

func (c *Config) normalizeReplicate() {
	c.Replicate.APIToken = strings.TrimSpace(c.Replicate.APIToken)
	if c.Replicate.APIToken == "" {
		if value, ok := os.LookupEnv("REPLICATE_API_TOKEN"); ok {
			c.Replicate.APIToken = strings.TrimSpace(value)
		}
	}
	c.Replicate.BaseURL = strings.TrimRight(strings.TrimSpace(c.Replicate.BaseURL), "/")
	if c.Replicate.BaseURL == "" {
		c.Replicate.BaseURL = defaultReplicateBaseURL
	}
	if c.Replicate.PollIntervalSeconds <= 0 {
		c.Replicate.PollIntervalSeconds = defaultReplicatePollInterval
	}
	if strings.TrimSpace(c.Replicate.MusicVersion) == "" {
		c.Replicate.MusicVersion = defaultMusicVersion
	}
	if strings.TrimSpace(c.Replicate.VoiceVersion) == "" {
		c.Replicate.VoiceVersion = defaultVoiceVersion
	}
	if strings.TrimSpace(c.Replicate.VideoVersion) == "" {
		c.Replicate.VideoVersion = defaultVideoVersion
	}
}

func (c *Config) normalizePipeline() {
	if len(c.Pipeline.Stages) == 0 {
		c.Pipeline.Stages = DefaultStages()
	} else {
		stages := make([]string, 0, len(c.Pipeline.Stages))
		seen := make(map[string]struct{}, len(c.Pipeline.Stages))
		for _, name := range c.Pipeline.Stages {
			normalized := strings.ToLower(strings.TrimSpace(name))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			stages = append(stages, normalized)
		}
		if len(stages) == 0 {
			stages = DefaultStages()
		}
		c.Pipeline.Stages = stages
	}
	if c.Pipeline.LyricsTimeout <= 0 {
		c.Pipeline.LyricsTimeout = defaultLyricsTimeoutSeconds
	}
	if c.Pipeline.MusicTimeout <= 0 {
		c.Pipeline.MusicTimeout = defaultMusicTimeoutSeconds
	}
	if c.Pipeline.VoiceTimeout <= 0 {
		c.Pipeline.VoiceTimeout = defaultVoiceTimeoutSeconds
	}
	if c.Pipeline.VideoTimeout <= 0 {
		c.Pipeline.VideoTimeout = defaultVideoTimeoutSeconds
	}
	c.Pipeline.MusicStylePrompt = strings.TrimSpace(c.Pipeline.MusicStylePrompt)
	if c.Pipeline.MusicStylePrompt == "" {
		c.Pipeline.MusicStylePrompt = defaultMusicStylePrompt
	}
	c.Pipeline.TargetVoice = strings.TrimSpace(c.Pipeline.TargetVoice)
	if c.Pipeline.TargetVoice == "" {
		c.Pipeline.TargetVoice = defaultTargetVoice
	}
	c.Pipeline.DefaultAvatarURL = strings.TrimSpace(c.Pipeline.DefaultAvatarURL)
	if c.Pipeline.DefaultAvatarURL == "" {
		c.Pipeline.DefaultAvatarURL = c.Server.BaseURL + "/avatar.jpg"
	}
	if c.Pipeline.MinLyricWords <= 0 {
		c.Pipeline.MinLyricWords = defaultMinLyricWords
	}
	if c.Pipeline.MaxLyricWords <= 0 {
		c.Pipeline.MaxLyricWords = defaultMaxLyricWords
	}
}

func (c *Config) normalizeMail() {
	c.Mail.APIKey = strings.TrimSpace(c.Mail.APIKey)
	if c.Mail.APIKey == "" {
		if value, ok := os.LookupEnv("MAIL_API_KEY"); ok {
			c.Mail.APIKey = strings.TrimSpace(value)
		}
	}
	c.Mail.BaseURL = strings.TrimRight(strings.TrimSpace(c.Mail.BaseURL), "/")
	if c.Mail.BaseURL == "" {
		c.Mail.BaseURL = defaultMailBaseURL
	}
	c.Mail.From = strings.TrimSpace(c.Mail.From)
	if c.Mail.From == "" {
		c.Mail.From = defaultMailFrom
	}
	c.Mail.Subject = strings.TrimSpace(c.Mail.Subject)
	if c.Mail.Subject == "" {
		c.Mail.Subject = defaultMailSubject
	}
	if c.Mail.TimeoutSeconds <= 0 {
		c.Mail.TimeoutSeconds = defaultMailTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
