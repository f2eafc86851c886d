package replicate

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

const (
	defaultBaseURL      = "https://api.replicate.com/v1"
	defaultHTTPTimeout  = 30 * time.Second
	defaultPollInterval = 2 * time.Second
)

// Config captures the runtime settings required to talk to the prediction API.
type Config struct {
	APIToken     string
	BaseURL      string
	PollInterval time.Duration
}

// Client wraps the Replicate prediction API: it creates a prediction for a
// pinned model version and polls it to a terminal state.
type Client struct {
	cfg        Config
	httpClient *http.Client
	sleeper    func(context.Context, time.Duration) error
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

// WithSleeper overrides how poll waits are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// NewClient constructs a prediction client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIToken:     strings.TrimSpace(cfg.APIToken),
			BaseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			PollInterval: cfg.PollInterval,
		},
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		sleeper:    sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.PollInterval <= 0 {
		client.cfg.PollInterval = defaultPollInterval
	}
	return client
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("replicate request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type outputMissingError struct {
	Model  string
	Status string
}

func (e *outputMissingError) Error() string {
	return fmt.Sprintf("replicate run: model %s finished with status %q but produced no output URL", e.Model, e.Status)
}

// IsOutputMissing reports whether the error indicates a prediction that
// finished without a usable output reference.
func IsOutputMissing(err error) bool {
	var missing *outputMissingError
	return errors.As(err, &missing)
}

// Run creates a prediction for the pinned model identifier (owner/name:version)
// and polls it until it succeeds, fails, or the context expires. It returns
// the single output file URL the model produced.
func (c *Client) Run(ctx context.Context, model string, input map[string]any) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return "", errors.New("replicate run: model identifier required")
	}
	if c.cfg.APIToken == "" {
		return "", errors.New("replicate run: api token required")
	}

	pred, err := c.createPrediction(ctx, model, input)
	if err != nil {
		return "", err
	}

	for {
		switch pred.Status {
		case "succeeded":
			url := extractOutputURL(pred.Output)
			if url == "" {
				return "", &outputMissingError{Model: model, Status: pred.Status}
			}
			return url, nil
		case "failed", "canceled":
			detail := strings.TrimSpace(fmt.Sprint(pred.Error))
			if detail == "" || detail == "<nil>" {
				detail = "no error detail"
			}
			return "", fmt.Errorf("replicate run: model %s %s: %s", model, pred.Status, detail)
		}

		if err := c.sleeper(ctx, c.cfg.PollInterval); err != nil {
			return "", err
		}
		pred, err = c.getPrediction(ctx, pred.ID)
		if err != nil {
			return "", err
		}
	}
}

func (c *Client) createPrediction(ctx context.Context, model string, input map[string]any) (*prediction, error) {
	var endpoint string
	payload := map[string]any{"input": input}
	if _, version, found := strings.Cut(model, ":"); found {
		endpoint = c.cfg.BaseURL + "/predictions"
		payload["version"] = version
	} else {
		endpoint = c.cfg.BaseURL + "/models/" + model + "/predictions"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("replicate run: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("replicate run: build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) getPrediction(ctx context.Context, id string) (*prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/predictions/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("replicate poll: build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*prediction, error) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("replicate request: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var pred prediction
	if err := json.Unmarshal(data, &pred); err != nil {
		return nil, fmt.Errorf("replicate request: decode response: %w", err)
	}
	if pred.ID == "" {
		return nil, fmt.Errorf("replicate request: response missing prediction id")
	}
	return &pred, nil
}

// extractOutputURL pulls the single file URL out of a prediction output,
// which may be a bare string or a list of strings.
func extractOutputURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, entry := range list {
			if str, ok := entry.(string); ok && strings.TrimSpace(str) != "" {
				return strings.TrimSpace(str)
			}
		}
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
