package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"swansong/internal/api"
	"swansong/internal/config"
	"swansong/internal/logging"
	"swansong/internal/services"
	"swansong/internal/services/mailer"
	"swansong/internal/session"
)

const maxRequestBody = 1 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Server.Bind),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", srv.handleGenerate)
	mux.HandleFunc("/api/meeting/", srv.handleMeeting)
	mux.HandleFunc("/api/send-invite", srv.handleInvite)
	mux.HandleFunc("/api/sessions", srv.handleSessions)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/health", srv.handleHealth)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.EmployeeName = strings.TrimSpace(req.EmployeeName)
	req.EmployeeInfo = strings.TrimSpace(req.EmployeeInfo)
	if req.EmployeeName == "" || req.EmployeeInfo == "" {
		s.writeError(w, http.StatusBadRequest, "employee name and info are required")
		return
	}

	sess, err := s.daemon.store.Create(r.Context(), req.EmployeeName, req.EmployeeInfo)
	if err != nil {
		s.log().Error("failed to create session", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	if err := s.daemon.runner.Launch(sess.ID); err != nil {
		s.log().Error("failed to launch pipeline",
			logging.String(logging.FieldSessionID, sess.ID), logging.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, "generation pipeline unavailable")
		return
	}

	s.log().Info("generation session accepted",
		logging.String(logging.FieldSessionID, sess.ID),
		logging.String("employee_name", sess.EmployeeName),
	)
	s.writeJSON(w, http.StatusAccepted, api.GenerateResponse{
		Success:     true,
		MeetingID:   sess.ID,
		MeetingLink: s.daemon.cfg.MeetingLink(sess.ID),
		Status:      string(session.StatusPending),
	})
}

func (s *apiServer) handleMeeting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/meeting/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "meeting not found")
		return
	}

	sess, err := s.daemon.store.Get(r.Context(), id)
	if err != nil {
		s.log().Error("failed to fetch session", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch meeting")
		return
	}
	if sess == nil {
		s.writeError(w, http.StatusNotFound, "meeting not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.MeetingFromSession(sess))
}

func (s *apiServer) handleInvite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.InviteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.EmployeeEmail = strings.TrimSpace(req.EmployeeEmail)
	req.MeetingLink = strings.TrimSpace(req.MeetingLink)
	if req.EmployeeEmail == "" || req.MeetingLink == "" {
		s.writeError(w, http.StatusBadRequest, "employee email and meeting link are required")
		return
	}

	messageID, err := s.daemon.mail.SendInvite(r.Context(), mailer.Invite{
		EmployeeName:  req.EmployeeName,
		EmployeeEmail: req.EmployeeEmail,
		MeetingLink:   req.MeetingLink,
	})
	if err != nil {
		s.log().Error("failed to send invite", logging.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrConfiguration) {
			status = http.StatusServiceUnavailable
		}
		s.writeJSON(w, status, api.ErrorResponse{
			Error:   "failed to send invite",
			Details: err.Error(),
		})
		return
	}

	s.log().Info("meeting invite sent", logging.String("message_id", messageID))
	s.writeJSON(w, http.StatusOK, api.InviteResponse{
		Success:   true,
		MessageID: messageID,
		Message:   fmt.Sprintf("meeting invite sent to %s", req.EmployeeEmail),
	})
}

func (s *apiServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessions, err := s.daemon.store.List(r.Context())
	if err != nil {
		s.log().Error("failed to list sessions", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	s.writeJSON(w, http.StatusOK, api.SessionListResponse{Sessions: api.SummariesFromSessions(sessions)})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Health(r.Context()))
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	return decoder.Decode(dst)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
