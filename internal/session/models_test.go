package session_test

import (
	"testing"

	"swansong/internal/session"
)

func TestParseStatus(t *testing.T) {
	for _, status := range session.AllStatuses() {
		parsed, ok := session.ParseStatus("  " + string(status) + " ")
		if !ok || parsed != status {
			t.Fatalf("expected %q to parse, got %q ok=%v", status, parsed, ok)
		}
	}
	if _, ok := session.ParseStatus("encoding"); ok {
		t.Fatal("expected unknown status to fail parsing")
	}
	if _, ok := session.ParseStatus(""); ok {
		t.Fatal("expected empty status to fail parsing")
	}
}

func TestCanTransitionIsForwardOnly(t *testing.T) {
	ok := [][2]session.Status{
		{session.StatusPending, session.StatusGeneratingLyrics},
		{session.StatusPending, session.StatusGeneratingMusic},
		{session.StatusGeneratingMusic, session.StatusGeneratingVideo},
		{session.StatusGeneratingVideo, session.StatusReady},
		{session.StatusPending, session.StatusFailed},
		{session.StatusConvertingVoice, session.StatusFailed},
	}
	for _, pair := range ok {
		if !session.CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}

	bad := [][2]session.Status{
		{session.StatusGeneratingMusic, session.StatusGeneratingLyrics},
		{session.StatusReady, session.StatusFailed},
		{session.StatusFailed, session.StatusPending},
		{session.StatusFailed, session.StatusReady},
		{session.StatusReady, session.StatusGeneratingVideo},
		{session.StatusGeneratingLyrics, session.StatusGeneratingLyrics},
	}
	for _, pair := range bad {
		if session.CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be rejected", pair[0], pair[1])
		}
	}
}

func TestTerminalAndProcessingClassification(t *testing.T) {
	if !session.StatusReady.IsTerminal() || !session.StatusFailed.IsTerminal() {
		t.Fatal("ready and failed must be terminal")
	}
	if session.StatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
	if session.StatusPending.IsProcessing() {
		t.Fatal("pending is not a processing status")
	}
	for _, status := range []session.Status{
		session.StatusGeneratingLyrics,
		session.StatusGeneratingMusic,
		session.StatusConvertingVoice,
		session.StatusGeneratingVideo,
	} {
		if !status.IsProcessing() {
			t.Fatalf("expected %s to be processing", status)
		}
	}
}

func TestSummarizeBuckets(t *testing.T) {
	sessions := []*session.Session{
		{Status: session.StatusPending},
		{Status: session.StatusGeneratingMusic},
		{Status: session.StatusConvertingVoice},
		{Status: session.StatusReady},
		{Status: session.StatusFailed},
		nil,
	}
	summary := session.Summarize(sessions)
	if summary.Total != 5 {
		t.Fatalf("unexpected total: %d", summary.Total)
	}
	if summary.Pending != 1 || summary.Processing != 2 || summary.Ready != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
