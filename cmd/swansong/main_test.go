package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"swansong/internal/api"
)

func runCommand(t *testing.T, address string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	full := []string{"--config", filepath.Join(t.TempDir(), "missing.toml")}
	if address != "" {
		full = append(full, "--address", address)
	}
	cmd.SetArgs(append(full, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestGenerateCommandPrintsMeetingLink(t *testing.T) {
	var captured api.GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(api.GenerateResponse{
			Success:     true,
			MeetingID:   "abc123",
			MeetingLink: "http://localhost:8480/meeting/abc123",
			Status:      "pending",
		})
	}))
	defer server.Close()

	output, err := runCommand(t, server.URL, "generate", "--name", "John Doe", "--info", "sales rep")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if captured.EmployeeName != "John Doe" || captured.EmployeeInfo != "sales rep" {
		t.Errorf("request = %+v", captured)
	}
	if !strings.Contains(output, "http://localhost:8480/meeting/abc123") {
		t.Errorf("output missing meeting link: %s", output)
	}
}

func TestGenerateCommandRequiresFlags(t *testing.T) {
	if _, err := runCommand(t, "http://127.0.0.1:0", "generate", "--name", "John"); err == nil {
		t.Fatal("expected error for missing --info")
	}
}

func TestShowCommandPrintsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/meeting/abc123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(api.MeetingResponse{
			Success:      true,
			EmployeeName: "John Doe",
			Status:       "ready",
			VideoURL:     "https://cdn.example.com/farewell.mp4",
		})
	}))
	defer server.Close()

	output, err := runCommand(t, server.URL, "show", "abc123")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(output, "ready") || !strings.Contains(output, "farewell.mp4") {
		t.Errorf("output = %s", output)
	}
}

func TestShowCommandSurfacesNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "meeting not found"})
	}))
	defer server.Close()

	_, err := runCommand(t, server.URL, "show", "nope")
	if err == nil || !strings.Contains(err.Error(), "meeting not found") {
		t.Fatalf("error = %v", err)
	}
}

func TestSessionsCommandRendersTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.SessionListResponse{Sessions: []api.SessionSummary{
			{ID: "one", EmployeeName: "John Doe", Status: "ready", VideoURL: "https://x.test/v.mp4"},
			{ID: "two", EmployeeName: "Jane Doe", Status: "failed", FailedStage: "music", Error: "boom"},
		}})
	}))
	defer server.Close()

	output, err := runCommand(t, server.URL, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	for _, want := range []string{"John Doe", "Jane Doe", "music: boom"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %s", want, output)
		}
	}
}

func TestSessionsCommandJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.SessionListResponse{Sessions: []api.SessionSummary{
			{ID: "one", EmployeeName: "John Doe", Status: "pending"},
		}})
	}))
	defer server.Close()

	output, err := runCommand(t, server.URL, "sessions", "--json")
	if err != nil {
		t.Fatalf("sessions --json: %v", err)
	}
	var sessions []api.SessionSummary
	if err := json.Unmarshal([]byte(output), &sessions); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if len(sessions) != 1 || sessions[0].ID != "one" {
		t.Fatalf("sessions = %+v", sessions)
	}
}

func TestInviteCommandRequiresFlags(t *testing.T) {
	if _, err := runCommand(t, "http://127.0.0.1:0", "invite", "--email", "a@b.test"); err == nil {
		t.Fatal("expected error for missing --link")
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := runCommand(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Errorf("output = %s", output)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[server]") {
		t.Errorf("sample config missing server section")
	}

	if _, err := runCommand(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
}
