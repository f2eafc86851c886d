package session

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a generation session.
type Status string

const (
	StatusPending          Status = "pending"
	StatusGeneratingLyrics Status = "generating_lyrics"
	StatusGeneratingMusic  Status = "generating_music"
	StatusConvertingVoice  Status = "converting_voice"
	StatusGeneratingVideo  Status = "generating_video"
	StatusReady            Status = "ready"
	StatusFailed           Status = "failed"
)

// forwardOrder lists the non-failed statuses in pipeline order. Failed is
// reachable from any non-terminal status and absorbing, so it sits outside
// the ordering.
var forwardOrder = []Status{
	StatusPending,
	StatusGeneratingLyrics,
	StatusGeneratingMusic,
	StatusConvertingVoice,
	StatusGeneratingVideo,
	StatusReady,
}

var statusRank = func() map[Status]int {
	ranks := make(map[Status]int, len(forwardOrder))
	for i, status := range forwardOrder {
		ranks[status] = i
	}
	return ranks
}()

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(forwardOrder)+1)
	for _, status := range forwardOrder {
		set[status] = struct{}{}
	}
	set[StatusFailed] = struct{}{}
	return set
}()

// AllStatuses returns the known statuses, forward order first, failed last.
func AllStatuses() []Status {
	cp := make([]Status, len(forwardOrder), len(forwardOrder)+1)
	copy(cp, forwardOrder)
	return append(cp, StatusFailed)
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further transitions occur from a status.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusFailed
}

// IsProcessing reports whether the status reflects an in-flight stage.
func (s Status) IsProcessing() bool {
	switch s {
	case StatusGeneratingLyrics, StatusGeneratingMusic, StatusConvertingVoice, StatusGeneratingVideo:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from one status to another respects the
// forward-only state machine: statuses advance along the pipeline order or
// jump to failed from any non-terminal status.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	fromRank, fromOK := statusRank[from]
	toRank, toOK := statusRank[to]
	if !fromOK || !toOK {
		return false
	}
	return toRank > fromRank
}

// Session is the record tracking one generation request from creation to
// terminal state. Stage outputs are populated once their producing stage
// completes and never cleared.
type Session struct {
	ID           string
	EmployeeName string
	EmployeeInfo string
	Status       Status

	Lyrics     string
	MusicURL   string
	SingingURL string
	VideoURL   string

	ErrorMessage string
	FailedStage  string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// SetFailed marks the session failed, recording the failing stage and message.
func (s *Session) SetFailed(stage, message string) {
	s.Status = StatusFailed
	s.FailedStage = stage
	s.ErrorMessage = message
}

// Clone returns a deep copy so store callers never share mutable state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

// HealthSummary aggregates session counts per lifecycle bucket.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Ready      int
	Failed     int
}

// Summarize tallies sessions into lifecycle buckets.
func Summarize(sessions []*Session) HealthSummary {
	var summary HealthSummary
	for _, sess := range sessions {
		if sess == nil {
			continue
		}
		summary.Total++
		switch {
		case sess.Status == StatusPending:
			summary.Pending++
		case sess.Status == StatusReady:
			summary.Ready++
		case sess.Status == StatusFailed:
			summary.Failed++
		case sess.Status.IsProcessing():
			summary.Processing++
		}
	}
	return summary
}
