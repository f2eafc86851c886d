package mailer

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

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"swansong/internal/config"
	"swansong/internal/services"
)

const userAgent = "Swansong/0.1.0"

// Invite describes one meeting invitation email.
type Invite struct {
	EmployeeName  string
	EmployeeEmail string
	MeetingLink   string
}

// Service delivers meeting invitation emails.
type Service interface {
	SendInvite(ctx context.Context, invite Invite) (string, error)
}

// NewService builds a mail service backed by the configured mail API.
// When no API key is configured, a noop implementation is returned that
// reports invite delivery as unavailable.
func NewService(cfg *config.Config) Service {
	if cfg == nil || cfg.Mail.APIKey == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Mail.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &apiService{
		baseURL: strings.TrimRight(cfg.Mail.BaseURL, "/"),
		apiKey:  cfg.Mail.APIKey,
		from:    cfg.Mail.From,
		subject: cfg.Mail.Subject,
		client:  &http.Client{Timeout: timeout},
		titler:  cases.Title(language.English),
	}
}

type noopService struct{}

func (noopService) SendInvite(ctx context.Context, invite Invite) (string, error) {
	return "", services.Wrap(services.ErrConfiguration, "", "send invite",
		"mail.api_key is not configured; invite delivery is disabled", nil)
}

type apiService struct {
	baseURL string
	apiKey  string
	from    string
	subject string
	client  *http.Client
	titler  cases.Caser
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// SendInvite renders the invite email and posts it to the mail API, returning
// the provider's message identifier.
func (s *apiService) SendInvite(ctx context.Context, invite Invite) (string, error) {
	email := strings.TrimSpace(invite.EmployeeEmail)
	link := strings.TrimSpace(invite.MeetingLink)
	if email == "" {
		return "", errors.New("send invite: employee email required")
	}
	if link == "" {
		return "", errors.New("send invite: meeting link required")
	}

	name := strings.TrimSpace(invite.EmployeeName)
	if name == "" {
		name = "there"
	} else {
		name = s.titler.String(name)
	}

	html, err := renderInviteHTML(name, link)
	if err != nil {
		return "", fmt.Errorf("send invite: render email: %w", err)
	}

	payload := sendRequest{
		From:    s.from,
		To:      []string{email},
		Subject: s.subject,
		HTML:    html,
		Text:    renderInviteText(name, link),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("send invite: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("send invite: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "", "send invite", "mail api request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("send invite: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", services.Wrap(services.ErrExternalService, "", "send invite",
			fmt.Sprintf("mail api http %d: %s", resp.StatusCode, strings.TrimSpace(string(data))), nil)
	}

	var parsed sendResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("send invite: decode response: %w", err)
	}
	if parsed.ID == "" {
		return "", errors.New("send invite: mail api returned no message id")
	}
	return parsed.ID, nil
}
