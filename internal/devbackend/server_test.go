package devbackend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/campus-portal/internal/backend"
	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/testfixtures"
)

const student = "20230001"

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()

	opts = append([]Option{
		WithBcryptCost(bcrypt.MinCost),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	srv, err := New("test-secret", opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func signIn(t *testing.T, baseURL, id string) (*backend.Client, *string) {
	t.Helper()

	token := new(string)
	client, err := backend.New(baseURL, backend.WithTokenSource(func() string { return *token }))
	if err != nil {
		t.Fatalf("backend.New() error = %v", err)
	}
	grant, err := client.Login(context.Background(), id, DefaultPassword)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	*token = grant.Token
	return client, token
}

func TestLogin(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	client, err := backend.New(ts.URL)
	if err != nil {
		t.Fatalf("backend.New() error = %v", err)
	}

	t.Run("wrong password is rejected with a message", func(t *testing.T) {
		_, err := client.Login(context.Background(), student, "nope")
		var apiErr *backend.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
			t.Fatalf("expected 401 APIError, got %v", err)
		}
		if apiErr.RejectionMessage() != "Invalid ID or password" {
			t.Fatalf("message = %q", apiErr.RejectionMessage())
		}
	})

	t.Run("grant carries the user object", func(t *testing.T) {
		grant, err := client.Login(context.Background(), "D-7", DefaultPassword)
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if grant.Token == "" || len(grant.User) == 0 {
			t.Fatalf("incomplete grant %+v", grant)
		}
	})
}

func TestStudentEndpointsRequireOwnBearer(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	anonymous, err := backend.New(ts.URL)
	if err != nil {
		t.Fatalf("backend.New() error = %v", err)
	}
	if _, err := anonymous.AvailableCourses(context.Background(), student); !backend.IsUnauthorized(err) {
		t.Fatalf("expected 401 without bearer, got %v", err)
	}

	other, _ := signIn(t, ts.URL, "20230002")
	_, err = other.AvailableCourses(context.Background(), student)
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		t.Fatalf("expected 403 for another student, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t)

	client, token := signIn(t, ts.URL, student)
	if err := client.Logout(context.Background(), *token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := client.AvailableCourses(context.Background(), student); !backend.IsUnauthorized(err) {
		t.Fatalf("expected revoked token to be refused, got %v", err)
	}
}

func TestTokensExpire(t *testing.T) {
	t.Parallel()
	clock := testfixtures.NewClock(time.Time{})
	_, ts := newTestServer(t, WithClock(clock.Now), WithTokenTTL(time.Hour))

	client, _ := signIn(t, ts.URL, student)
	if _, err := client.AvailableCourses(context.Background(), student); err != nil {
		t.Fatalf("AvailableCourses() error = %v", err)
	}
	clock.Advance(2 * time.Hour)
	if _, err := client.AvailableCourses(context.Background(), student); !backend.IsUnauthorized(err) {
		t.Fatalf("expected expired token to be refused, got %v", err)
	}
}

func TestRegistrationBookkeeping(t *testing.T) {
	t.Parallel()
	srv, ts := newTestServer(t)
	ctx := context.Background()

	client, _ := signIn(t, ts.URL, student)
	if err := client.RegisterCourses(ctx, student, []string{"CS101", "HIST110"}); err != nil {
		t.Fatalf("RegisterCourses() error = %v", err)
	}
	if err := client.RegisterSections(ctx, student, []registration.SectionRegistration{{CourseCode: "CS101", SectionID: "S1"}}); err != nil {
		t.Fatalf("RegisterSections() error = %v", err)
	}
	want := map[string]string{"CS101": "S1", "HIST110": ""}
	if diff := cmp.Diff(want, srv.Registrations(student)); diff != "" {
		t.Fatalf("registrations mismatch (-want +got):\n%s", diff)
	}

	courses, err := client.AvailableCourses(ctx, student)
	if err != nil {
		t.Fatalf("AvailableCourses() error = %v", err)
	}
	for _, course := range courses {
		if course.Code == "CS101" || course.Code == "HIST110" {
			t.Fatalf("registered course %s still offered", course.Code)
		}
	}

	err = client.RegisterCourses(ctx, student, []string{"CS101"})
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Course CS101 is already registered" {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}

	if err := client.DropCourse(ctx, student, "CS101"); err != nil {
		t.Fatalf("DropCourse() error = %v", err)
	}
	if diff := cmp.Diff(map[string]string{"HIST110": ""}, srv.Registrations(student)); diff != "" {
		t.Fatalf("registrations after drop mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionCapacity(t *testing.T) {
	t.Parallel()
	_, ts := newTestServer(t, WithUsers([]User{
		{ID: "s1", Role: "student", Password: DefaultPassword},
		{ID: "s2", Role: "student", Password: DefaultPassword},
		{ID: "s3", Role: "student", Password: DefaultPassword},
	}))
	ctx := context.Background()

	for i, id := range []string{"s1", "s2", "s3"} {
		client, _ := signIn(t, ts.URL, id)
		if err := client.RegisterCourses(ctx, id, []string{"CS101"}); err != nil {
			t.Fatalf("RegisterCourses(%s) error = %v", id, err)
		}
		err := client.RegisterSections(ctx, id, []registration.SectionRegistration{{CourseCode: "CS101", SectionID: "S1"}})
		if i < 2 && err != nil {
			t.Fatalf("RegisterSections(%s) error = %v", id, err)
		}
		if i == 2 {
			var apiErr *backend.APIError
			if !errors.As(err, &apiErr) || apiErr.Message != "Section S1 is full" {
				t.Fatalf("expected full section, got %v", err)
			}
		}
	}
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New(" "); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
