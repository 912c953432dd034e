package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/campus-portal/internal/routes"
	"github.com/example/campus-portal/internal/session"
	"github.com/example/campus-portal/internal/validation"
)

type sessionManager interface {
	Login(ctx context.Context, id, password string) (session.Session, error)
	Logout(ctx context.Context)
	Current() session.Session
}

type AuthHandler struct {
	sessions  sessionManager
	validator *validation.Validator
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(sessions sessionManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:  sessions,
		validator: validation.New(),
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Login signs the principal in and reports the portal they land on.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if err := h.validator.Struct(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Login", "user_id", req.ID)
	current, err := h.sessions.Login(r.Context(), req.ID, req.Password)
	if err != nil {
		logger.WarnContext(r.Context(), "login failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	home, _ := session.HomePath(current.Role())
	if home == "" {
		home = routes.LoginPath
	}
	logger.InfoContext(r.Context(), "user signed in", "role", current.Role())
	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		Principal: current.Principal,
		Home:      home,
		ExpiresAt: expiresAt(current),
	})
}

// Logout ends the session. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.sessions.Logout(r.Context())
	h.log(r.Context(), "Logout").InfoContext(r.Context(), "user signed out")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Session reports the current session without the token.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	current := h.sessions.Current()
	resp := sessionResponse{Status: current.Status, Principal: current.Principal}
	if current.Authenticated() {
		resp.Home, _ = session.HomePath(current.Role())
		resp.ExpiresAt = expiresAt(current)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type loginRequest struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Principal *session.Principal `json:"principal"`
	Home      string             `json:"home"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
}

type sessionResponse struct {
	Status    session.Status     `json:"status"`
	Principal *session.Principal `json:"principal,omitempty"`
	Home      string             `json:"home,omitempty"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
}

func expiresAt(s session.Session) *time.Time {
	if s.ExpiresAt.IsZero() {
		return nil
	}
	t := s.ExpiresAt.UTC()
	return &t
}
