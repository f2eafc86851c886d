package api

import "time"

// GenerateRequest is the payload for creating a new generation session.
type GenerateRequest struct {
	EmployeeName string `json:"employeeName"`
	EmployeeInfo string `json:"employeeInfo"`
}

// GenerateResponse acknowledges an accepted generation request.
type GenerateResponse struct {
	Success     bool   `json:"success"`
	MeetingID   string `json:"meetingId"`
	MeetingLink string `json:"meetingLink"`
	Status      string `json:"status"`
}

// MeetingResponse is the polling view of one session.
type MeetingResponse struct {
	Success      bool   `json:"success"`
	EmployeeName string `json:"employeeName"`
	Status       string `json:"status"`
	VideoURL     string `json:"videoUrl,omitempty"`
	Error        string `json:"error,omitempty"`
	FailedStage  string `json:"failedStage,omitempty"`
}

// InviteRequest is the payload for sending a meeting invitation email.
type InviteRequest struct {
	EmployeeName  string `json:"employeeName,omitempty"`
	EmployeeEmail string `json:"employeeEmail"`
	MeetingLink   string `json:"meetingLink"`
}

// InviteResponse acknowledges a delivered invitation.
type InviteResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Message   string `json:"message,omitempty"`
}

// SessionSummary is the diagnostics view of a session used by listings.
type SessionSummary struct {
	ID           string     `json:"id"`
	EmployeeName string     `json:"employeeName"`
	Status       string     `json:"status"`
	VideoURL     string     `json:"videoUrl,omitempty"`
	FailedStage  string     `json:"failedStage,omitempty"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// SessionListResponse wraps a session listing.
type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SessionCounts buckets sessions by lifecycle state.
type SessionCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Ready      int `json:"ready"`
	Failed     int `json:"failed"`
}

// StatusResponse reports daemon runtime information.
type StatusResponse struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	StoreBackend string        `json:"storeBackend"`
	Sessions     SessionCounts `json:"sessions"`
}

// StageHealth reports the readiness of one pipeline stage.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse aggregates store and stage readiness.
type HealthResponse struct {
	Healthy bool          `json:"healthy"`
	Store   string        `json:"store"`
	Stages  []StageHealth `json:"stages"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
