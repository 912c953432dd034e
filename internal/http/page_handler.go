package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/campus-portal/internal/session"
)

// PageHandler serves the landing views of each portal. The route guard has
// already decided the caller may see the page.
type PageHandler struct {
	responder responder
	logger    *slog.Logger
}

func NewPageHandler(logger *slog.Logger) *PageHandler {
	return &PageHandler{responder: newResponder(logger), logger: logger}
}

func (h *PageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := pageResponse{View: viewName(r.URL.Path)}
	if current, ok := SessionFromContext(r.Context()); ok && current.Authenticated() {
		resp.Principal = current.Principal
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func viewName(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "home"
	}
	return strings.ReplaceAll(trimmed, "/", ".")
}

type pageResponse struct {
	View      string             `json:"view"`
	Principal *session.Principal `json:"principal,omitempty"`
}
