package mailer_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"swansong/internal/config"
	"swansong/internal/services"
	"swansong/internal/services/mailer"
)

func mailConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Mail.APIKey = "test-key"
	cfg.Mail.BaseURL = baseURL
	cfg.Mail.From = "HR Department <hr@example.com>"
	cfg.Mail.Subject = "Urgent: Mandatory Meeting"
	return &cfg
}

func TestSendInviteDeliversEmail(t *testing.T) {
	var captured struct {
		auth string
		body map[string]any
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		captured.auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured.body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"id": "msg-123"}); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	svc := mailer.NewService(mailConfig(server.URL))
	id, err := svc.SendInvite(context.Background(), mailer.Invite{
		EmployeeName:  "john doe",
		EmployeeEmail: "john@example.com",
		MeetingLink:   "https://meet.example.com/meeting/abc123",
	})
	if err != nil {
		t.Fatalf("SendInvite: %v", err)
	}
	if id != "msg-123" {
		t.Fatalf("message id = %q, want msg-123", id)
	}
	if captured.auth != "Bearer test-key" {
		t.Errorf("authorization header = %q", captured.auth)
	}
	html, _ := captured.body["html"].(string)
	if !strings.Contains(html, "John Doe") {
		t.Errorf("html body missing title-cased employee name: %q", html)
	}
	if !strings.Contains(html, "https://meet.example.com/meeting/abc123") {
		t.Errorf("html body missing meeting link")
	}
	to, _ := captured.body["to"].([]any)
	if len(to) != 1 || to[0] != "john@example.com" {
		t.Errorf("to list = %v", to)
	}
}

func TestSendInviteRejectsMissingFields(t *testing.T) {
	svc := mailer.NewService(mailConfig("http://127.0.0.1:0"))

	if _, err := svc.SendInvite(context.Background(), mailer.Invite{MeetingLink: "https://x.test/m/1"}); err == nil {
		t.Fatal("expected error for missing email")
	}
	if _, err := svc.SendInvite(context.Background(), mailer.Invite{EmployeeEmail: "a@b.test"}); err == nil {
		t.Fatal("expected error for missing meeting link")
	}
}

func TestSendInviteSurfacesAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid recipient"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	svc := mailer.NewService(mailConfig(server.URL))
	_, err := svc.SendInvite(context.Background(), mailer.Invite{
		EmployeeName:  "jane",
		EmployeeEmail: "jane@example.com",
		MeetingLink:   "https://meet.example.com/meeting/xyz",
	})
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("error = %v, want ErrExternalService", err)
	}
	if !strings.Contains(err.Error(), "422") {
		t.Errorf("error missing http status: %v", err)
	}
}

func TestNoopServiceWithoutAPIKey(t *testing.T) {
	cfg := config.Default()
	svc := mailer.NewService(&cfg)
	_, err := svc.SendInvite(context.Background(), mailer.Invite{
		EmployeeEmail: "a@b.test",
		MeetingLink:   "https://x.test/m/1",
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
}
