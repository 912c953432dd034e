package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/campus-portal/internal/backend"
	"github.com/example/campus-portal/internal/catalog"
	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/schedule"
	"github.com/example/campus-portal/internal/session"
	"github.com/example/campus-portal/internal/validation"
)

var (
	errBadRequestBody = errors.New("request body is not valid JSON")
	errNotSignedIn    = errors.New("sign in to continue")
	errWrongPortal    = errors.New("this page belongs to another portal")

	errCommitInProgress = errors.New("registration is being submitted")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps session, registration and backend failures to responses.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var (
		authErr     *session.AuthError
		conflictErr *registration.ConflictError
		commitErr   *registration.CommitError
		vErr        *validation.Error
	)
	switch {
	case errors.As(err, &authErr):
		r.writeJSON(ctx, w, authStatus(authErr), errorResponse{ErrorCode: "AUTH_" + strings.ToUpper(session.ErrorKind(err)), Message: authErr.Message})
	case errors.As(err, &conflictErr):
		r.writeJSON(ctx, w, http.StatusConflict, conflictResponse{
			ErrorCode: "SCHEDULE_CONFLICT",
			Message:   conflictMessage(conflictErr),
			Day:       conflictErr.Day.String(),
			Conflict:  conflictErr.Existing,
			Candidate: conflictErr.Candidate,
		})
	case errors.Is(err, registration.ErrSectionRequired):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{ErrorCode: "SECTION_REQUIRED", Message: "Choose a section before adding this course."})
	case errors.Is(err, registration.ErrNothingSelected):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{ErrorCode: "NOTHING_SELECTED", Message: "Add at least one course before registering."})
	case errors.Is(err, registration.ErrAlreadyRegistered):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "ALREADY_REGISTERED", Message: "Remove the course first to change its section."})
	case errors.Is(err, registration.ErrCommitted):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "ALREADY_COMMITTED", Message: "This registration was already submitted."})
	case errors.Is(err, errCommitInProgress):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "COMMIT_IN_PROGRESS", Message: "Your registration is being submitted. Please wait."})
	case errors.Is(err, catalog.ErrUnknownCourse):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "The course is not offered to you."})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Message: statusMessage(http.StatusBadRequest), Errors: vErr.Fields})
	case backend.IsUnauthorized(err):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{ErrorCode: "AUTH_EXPIRED", Message: "Your session has expired. Please sign in again."})
	case errors.As(err, &commitErr):
		r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{ErrorCode: "COMMIT_FAILED", Message: commitMessage(commitErr)})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: statusMessage(http.StatusInternalServerError)})
	}
}

func authStatus(err *session.AuthError) int {
	switch {
	case errors.Is(err, session.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrRejected):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrNetwork):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func conflictMessage(err *registration.ConflictError) string {
	return "Time conflict on " + err.Day.String() + " with " + err.Existing.CourseCode +
		" (" + err.Existing.Interval.Start.String() + " - " + err.Existing.Interval.End.String() + ")."
}

func commitMessage(err *registration.CommitError) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Registration failed. Your selection was kept, please try again."
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	return LoggerFromContext(ctx, r.logger)
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is not valid."
	case http.StatusUnauthorized:
		return "Authentication is required."
	case http.StatusForbidden:
		return "You are not allowed to do this."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusConflict:
		return "The request conflicts with the current state."
	case http.StatusUnprocessableEntity:
		return "The request cannot be processed."
	case http.StatusBadGateway:
		return "The college server could not be reached."
	default:
		return "An internal error occurred."
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type conflictResponse struct {
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Day       string         `json:"day"`
	Conflict  schedule.Entry `json:"conflict"`
	Candidate schedule.Entry `json:"candidate"`
}
