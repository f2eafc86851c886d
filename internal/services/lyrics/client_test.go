package lyrics_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"swansong/internal/services/lyrics"
)

func TestGenerateDecodesLyrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-lyrics" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["employeeName"] != "Dana" {
			t.Errorf("unexpected employee name %q", payload["employeeName"])
		}
		json.NewEncoder(w).Encode(map[string]string{
			"lyrics": "  Farewell Dana, synergy calls you onward  ",
			"status": "ready",
		})
	}))
	defer server.Close()

	client := lyrics.NewClient(lyrics.Config{BaseURL: server.URL}, lyrics.WithHTTPClient(server.Client()))
	text, err := client.Generate(context.Background(), "Dana", "Sales, 3 years")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Farewell Dana, synergy calls you onward" {
		t.Fatalf("unexpected lyrics: %q", text)
	}
}

func TestGenerateRejectsEmptyLyrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"lyrics": "   ", "status": "ready"})
	}))
	defer server.Close()

	client := lyrics.NewClient(lyrics.Config{BaseURL: server.URL}, lyrics.WithHTTPClient(server.Client()))
	if _, err := client.Generate(context.Background(), "Dana", "info"); err == nil {
		t.Fatal("expected error for empty lyric text")
	}
}

func TestGenerateSurfacesUpstreamErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("lyrics model offline"))
	}))
	defer server.Close()

	client := lyrics.NewClient(lyrics.Config{BaseURL: server.URL}, lyrics.WithHTTPClient(server.Client()))
	_, err := client.Generate(context.Background(), "Dana", "info")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected http status error, got %v", err)
	}
}

func TestValidateWordBounds(t *testing.T) {
	word := func(n int) string {
		return strings.TrimSpace(strings.Repeat("la ", n))
	}
	cases := []struct {
		words  int
		wantOK bool
	}{
		{10, false},
		{14, false},
		{15, true},
		{20, true},
		{50, true},
		{51, false},
		{60, false},
	}
	for _, tc := range cases {
		err := lyrics.Validate(word(tc.words), 15, 50)
		if tc.wantOK && err != nil {
			t.Fatalf("expected %d words to pass, got %v", tc.words, err)
		}
		if !tc.wantOK && err == nil {
			t.Fatalf("expected %d words to fail", tc.words)
		}
	}
}
