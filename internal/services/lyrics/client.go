package lyrics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// Config captures the settings for the lyrics generation service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the external lyrics generation endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a lyrics client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		cfg: Config{
			BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Timeout: timeout,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type generateRequest struct {
	EmployeeName string `json:"employeeName"`
	EmployeeInfo string `json:"employeeInfo"`
}

type generateResponse struct {
	Lyrics string `json:"lyrics"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Generate requests lyrics for the employee and returns the lyric text.
func (c *Client) Generate(ctx context.Context, employeeName, employeeInfo string) (string, error) {
	if c.cfg.BaseURL == "" {
		return "", errors.New("lyrics generate: base url required")
	}

	body, err := json.Marshal(generateRequest{EmployeeName: employeeName, EmployeeInfo: employeeInfo})
	if err != nil {
		return "", fmt.Errorf("lyrics generate: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/generate-lyrics", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("lyrics generate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("lyrics generate: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("lyrics generate: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("lyrics generate: http %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("lyrics generate: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("lyrics generate: upstream error: %s", parsed.Error)
	}

	text := strings.TrimSpace(parsed.Lyrics)
	if text == "" {
		return "", errors.New("lyrics generate: response carried no lyric text")
	}
	return text, nil
}
