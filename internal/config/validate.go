package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// stageOrder pins each stage to its canonical position. Configured stage
// lists must follow it so session statuses only ever move forward.
var stageOrder = map[string]int{
	"lyrics": 0,
	"music":  1,
	"voice":  2,
	"video":  3,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLyrics(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateMail(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if !strings.Contains(c.Server.Bind, ":") {
		return fmt.Errorf("server.bind %q must include a port", c.Server.Bind)
	}
	parsed, err := url.Parse(c.Server.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("server.base_url %q must be an absolute URL", c.Server.BaseURL)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "memory", "sqlite":
		return nil
	default:
		return fmt.Errorf("store.backend %q must be \"memory\" or \"sqlite\"", c.Store.Backend)
	}
}

func (c *Config) validateLyrics() error {
	parsed, err := url.Parse(c.Lyrics.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("lyrics.base_url %q must be an absolute URL", c.Lyrics.BaseURL)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	prev := -1
	for _, name := range c.Pipeline.Stages {
		rank, ok := stageOrder[name]
		if !ok {
			return fmt.Errorf("pipeline.stages contains unknown stage %q", name)
		}
		if rank <= prev {
			return fmt.Errorf("pipeline.stages lists %q out of order; stages run lyrics, music, voice, video", name)
		}
		prev = rank
	}
	if c.Pipeline.MinLyricWords > c.Pipeline.MaxLyricWords {
		return errors.New("pipeline.min_lyric_words must not exceed pipeline.max_lyric_words")
	}
	return nil
}

func (c *Config) validateMail() error {
	// The mail API key is optional; without it the daemon runs with invite
	// delivery disabled.
	parsed, err := url.Parse(c.Mail.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("mail.base_url %q must be an absolute URL", c.Mail.BaseURL)
	}
	return nil
}
