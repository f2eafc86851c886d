package api

import (
	"swansong/internal/pipeline"
	"swansong/internal/session"
)

// MeetingFromSession builds the polling view of a session.
func MeetingFromSession(sess *session.Session) MeetingResponse {
	return MeetingResponse{
		Success:      true,
		EmployeeName: sess.EmployeeName,
		Status:       string(sess.Status),
		VideoURL:     sess.VideoURL,
		Error:        sess.ErrorMessage,
		FailedStage:  sess.FailedStage,
	}
}

// SummaryFromSession builds the diagnostics view of a session.
func SummaryFromSession(sess *session.Session) SessionSummary {
	return SessionSummary{
		ID:           sess.ID,
		EmployeeName: sess.EmployeeName,
		Status:       string(sess.Status),
		VideoURL:     sess.VideoURL,
		FailedStage:  sess.FailedStage,
		Error:        sess.ErrorMessage,
		CreatedAt:    sess.CreatedAt,
		UpdatedAt:    sess.UpdatedAt,
		CompletedAt:  sess.CompletedAt,
	}
}

// SummariesFromSessions converts a session listing, skipping nil entries.
func SummariesFromSessions(sessions []*session.Session) []SessionSummary {
	out := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		if sess == nil {
			continue
		}
		out = append(out, SummaryFromSession(sess))
	}
	return out
}

// CountsFromSummary converts store lifecycle buckets into the API shape.
func CountsFromSummary(summary session.HealthSummary) SessionCounts {
	return SessionCounts{
		Total:      summary.Total,
		Pending:    summary.Pending,
		Processing: summary.Processing,
		Ready:      summary.Ready,
		Failed:     summary.Failed,
	}
}

// StageHealthFromChecks converts pipeline health checks into the API shape.
func StageHealthFromChecks(checks []pipeline.Health) []StageHealth {
	out := make([]StageHealth, 0, len(checks))
	for _, check := range checks {
		out = append(out, StageHealth{
			Name:   check.Name,
			Ready:  check.Ready,
			Detail: check.Detail,
		})
	}
	return out
}
