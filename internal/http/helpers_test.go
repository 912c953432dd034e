package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/example/campus-portal/internal/backend"
	"github.com/example/campus-portal/internal/catalog"
	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/session"
	"github.com/example/campus-portal/internal/storage"
	"github.com/example/campus-portal/internal/testfixtures"
)

type stubAuthAPI struct {
	users map[string]session.Principal
}

func (s stubAuthAPI) Login(_ context.Context, id, password string) (session.Grant, error) {
	p, ok := s.users[id]
	if !ok || password != "secret" {
		return session.Grant{}, &backend.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials", Path: "/api/auth/login"}
	}
	return testfixtures.Grant(p), nil
}

func (stubAuthAPI) Logout(context.Context, string) error { return nil }

type stubCatalog struct {
	courses []registration.CourseOffering
}

func (s stubCatalog) Available(context.Context, string) ([]registration.CourseOffering, error) {
	return s.courses, nil
}

func (s stubCatalog) Find(_ context.Context, _ string, code string) (registration.CourseOffering, error) {
	for _, course := range s.courses {
		if course.Code == code {
			return course, nil
		}
	}
	return registration.CourseOffering{}, catalog.ErrUnknownCourse
}

type recordingRegistrationAPI struct {
	mu          sync.Mutex
	courses     []string
	sections    []registration.SectionRegistration
	dropped     []string
	sectionsErr error
}

func (r *recordingRegistrationAPI) RegisterCourses(_ context.Context, _ string, codes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses = append(r.courses, codes...)
	return nil
}

func (r *recordingRegistrationAPI) RegisterSections(_ context.Context, _ string, regs []registration.SectionRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sectionsErr != nil {
		return r.sectionsErr
	}
	r.sections = append(r.sections, regs...)
	return nil
}

func (r *recordingRegistrationAPI) DropCourse(_ context.Context, _ string, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, code)
	return nil
}

type portal struct {
	handler  http.Handler
	sessions *session.Manager
	api      *recordingRegistrationAPI
}

func newPortal(t *testing.T) *portal {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := map[string]session.Principal{}
	for _, p := range []session.Principal{testfixtures.Student(), testfixtures.Admin(), testfixtures.Doctor(), testfixtures.TeachingAssistant()} {
		users[p.ID] = p
	}
	manager := session.NewManager(stubAuthAPI{users: users}, storage.NewMemory(), session.WithLogger(logger))
	api := &recordingRegistrationAPI{}
	regHandler := NewRegistrationHandler(stubCatalog{courses: testfixtures.Courses()}, registration.NewRegistrarWithLogger(api, nil, logger), logger)
	cancel := manager.Subscribe(func(e session.Event) {
		if e.Kind == session.EventSignedOut {
			regHandler.Reset()
		}
	})
	t.Cleanup(cancel)

	handler := NewRouter(RouterConfig{
		Auth:         NewAuthHandler(manager, logger),
		Pages:        NewPageHandler(logger),
		Registration: regHandler,
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
			RouteGuard(manager, logger),
		},
	})
	return &portal{handler: handler, sessions: manager, api: api}
}

// newUpstreamPortal wires the portal to a real backend client, as the portal
// binary does. The upstream accepts logins and answers every other call with
// an expired-token 401.
func newUpstreamPortal(t *testing.T) *portal {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/auth/login" {
			user, _ := json.Marshal(testfixtures.Student())
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-1", "user": json.RawMessage(user)})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	}))
	t.Cleanup(upstream.Close)

	var manager *session.Manager
	client, err := backend.New(upstream.URL,
		backend.WithTokenSource(func() string { return manager.Token() }),
		backend.WithUnauthorizedHook(func(ctx context.Context) {
			manager.Invalidate(ctx, session.ReasonExpired)
		}),
		backend.WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	manager = session.NewManager(client, storage.NewMemory(), session.WithLogger(logger))
	regHandler := NewRegistrationHandler(stubCatalog{courses: testfixtures.Courses()}, registration.NewRegistrarWithLogger(client, nil, logger), logger)
	cancel := manager.Subscribe(func(e session.Event) {
		if e.Kind == session.EventSignedOut {
			regHandler.Reset()
		}
	})
	t.Cleanup(cancel)

	handler := NewRouter(RouterConfig{
		Auth:         NewAuthHandler(manager, logger),
		Pages:        NewPageHandler(logger),
		Registration: regHandler,
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
			RouteGuard(manager, logger),
		},
	})
	return &portal{handler: handler, sessions: manager, api: &recordingRegistrationAPI{}}
}

func (p *portal) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, req)
	return rec
}

func (p *portal) login(t *testing.T, principal session.Principal) {
	t.Helper()
	rec := p.do(t, http.MethodPost, "/login", map[string]string{"id": principal.ID, "password": "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}
