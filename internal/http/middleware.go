package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/example/campus-portal/internal/routes"
	"github.com/example/campus-portal/internal/session"
)

// SessionSource exposes the current session to the route guard.
type SessionSource interface {
	Current() session.Session
}

// RouteGuard applies the portal routing rules. Page requests are redirected
// with 303 See Other; other requests to guarded paths get 401 or 403.
func RouteGuard(sessions SessionSource, logger *slog.Logger) func(http.Handler) http.Handler {
	resp := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page := r.Method == http.MethodGet || r.Method == http.MethodHead
			_, guarded := routes.RequiredRole(r.URL.Path)
			if !page && !guarded {
				next.ServeHTTP(w, r)
				return
			}

			current := sessions.Current()
			decision := routes.Resolve(current, r.URL.Path)
			if decision.Allow {
				next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), current)))
				return
			}

			if page {
				handlerLogger(r.Context(), logger, "RouteGuard", "", "redirect", decision.Redirect).
					DebugContext(r.Context(), "page redirected")
				http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
				return
			}
			if !current.Authenticated() {
				resp.writeError(r.Context(), w, http.StatusUnauthorized, errNotSignedIn)
				return
			}
			resp.writeError(r.Context(), w, http.StatusForbidden, errWrongPortal)
		})
	}
}

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request scoped logger and identifier to the context.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(ContextWithRequestID(r.Context(), id), logger)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", rec.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// CORS allows the configured browser origins to call the portal with credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
	})
	return c.Handler
}
