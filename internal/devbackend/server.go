// Package devbackend is an in-memory stand-in for the college API. It backs
// cmd/devbackend and the integration tests of the client packages.
package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/campus-portal/internal/backend"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 8 * time.Hour

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the time source used for token issuing and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.tokens.now = now
		}
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.tokens.ttl = ttl
		}
	}
}

// WithIDGenerator replaces the token id generator.
func WithIDGenerator(next func() string) Option {
	return func(s *Server) {
		if next != nil {
			s.tokens.newID = next
		}
	}
}

// WithBcryptCost sets the cost used to hash seeded passwords.
func WithBcryptCost(cost int) Option {
	return func(s *Server) {
		s.cost = cost
	}
}

func WithUsers(users []User) Option {
	return func(s *Server) {
		s.seedUsers = users
	}
}

func WithCourses(courses []backend.CourseDTO) Option {
	return func(s *Server) {
		s.courses = courses
	}
}

type account struct {
	User
	hash []byte
}

// Server implements the college API in memory.
type Server struct {
	logger    *slog.Logger
	tokens    *issuer
	cost      int
	seedUsers []User
	courses   []backend.CourseDTO

	users map[string]account

	mu            sync.Mutex
	registrations map[string]map[string]string
	enrolment     map[string]int
}

// New hashes the seeded passwords and returns a ready server.
func New(secret string, opts ...Option) (*Server, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("devbackend: signing secret is required")
	}
	s := &Server{
		logger: slog.Default(),
		tokens: &issuer{
			secret:  []byte(secret),
			ttl:     DefaultTokenTTL,
			now:     time.Now,
			newID:   uuid.NewString,
			revoked: make(map[string]time.Time),
		},
		cost:          bcrypt.DefaultCost,
		seedUsers:     SeedUsers(),
		courses:       SeedCourses(),
		users:         make(map[string]account),
		registrations: make(map[string]map[string]string),
		enrolment:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, user := range s.seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("devbackend: hash password for %s: %w", user.ID, err)
		}
		user.Password = ""
		s.users[user.ID] = account{User: user, hash: hash}
	}
	return s, nil
}

// Handler routes the API endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("POST /api/auth/logout", s.authenticated(s.logout))
	mux.HandleFunc("GET /api/student/available-courses/{studentId}", s.student(s.availableCourses))
	mux.HandleFunc("POST /api/student/register-course/{studentId}", s.student(s.registerCourses))
	mux.HandleFunc("POST /api/student/register-section/{studentId}", s.student(s.registerSections))
	mux.HandleFunc("POST /api/student/drop-course/{studentId}", s.student(s.dropCourse))
	return mux
}

// Registrations returns the student's registered courses and their sections.
func (s *Server) Registrations(studentID string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.registrations[studentID]))
	for code, section := range s.registrations[studentID] {
		out[code] = section
	}
	return out
}

func (s *Server) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	pairs := append([]any{"service", "DevBackend", "operation", operation}, attrs...)
	return s.logger.With(pairs...)
}

type loginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Request body must be JSON")
		return
	}
	id := strings.TrimSpace(req.ID)
	logger := s.log(r.Context(), "Login", "user_id", id)

	acct, ok := s.users[id]
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		logger.WarnContext(r.Context(), "login rejected")
		writeMessage(w, http.StatusUnauthorized, "Invalid ID or password")
		return
	}

	token, expires, err := s.tokens.issue(acct.ID, acct.Role)
	if err != nil {
		logger.ErrorContext(r.Context(), "token issue failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not sign in")
		return
	}
	logger.InfoContext(r.Context(), "login succeeded", "expires_at", expires)
	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User:  userPayload{ID: acct.ID, Name: acct.Name, Role: acct.Role, Email: acct.Email},
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, claims tokenClaims) {
	s.tokens.revoke(claims)
	s.log(r.Context(), "Logout", "user_id", claims.Subject).InfoContext(r.Context(), "token revoked")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, tokenClaims)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			writeMessage(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		claims, err := s.tokens.verify(strings.TrimSpace(token))
		if err != nil {
			s.log(r.Context(), "Authenticate").InfoContext(r.Context(), "bearer rejected", "error", err)
			writeMessage(w, http.StatusUnauthorized, "Session expired, please sign in again")
			return
		}
		next(w, r, claims)
	}
}

// student authenticates the bearer and checks it belongs to the student in the path.
func (s *Server) student(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, claims tokenClaims) {
		studentID := r.PathValue("studentId")
		if claims.Role != "student" || claims.Subject != studentID {
			writeMessage(w, http.StatusForbidden, "Not allowed for this student")
			return
		}
		next(w, r, studentID)
	})
}

type coursesResponse struct {
	Courses []backend.CourseDTO `json:"courses"`
}

func (s *Server) availableCourses(w http.ResponseWriter, _ *http.Request, studentID string) {
	s.mu.Lock()
	registered := s.registrations[studentID]
	out := make([]backend.CourseDTO, 0, len(s.courses))
	for _, course := range s.courses {
		if _, ok := registered[course.Code]; ok {
			continue
		}
		out = append(out, course)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, coursesResponse{Courses: out})
}

func (s *Server) course(code string) (backend.CourseDTO, bool) {
	for _, course := range s.courses {
		if course.Code == code {
			return course, true
		}
	}
	return backend.CourseDTO{}, false
}

func (s *Server) registerCourses(w http.ResponseWriter, r *http.Request, studentID string) {
	var req struct {
		CourseCodes []string `json:"courseCodes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.CourseCodes) == 0 {
		writeMessage(w, http.StatusBadRequest, "courseCodes must list at least one course")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	registered := s.registrations[studentID]
	for _, code := range req.CourseCodes {
		if _, ok := s.course(code); !ok {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Course %s is not offered", code))
			return
		}
		if _, ok := registered[code]; ok {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Course %s is already registered", code))
			return
		}
	}
	if registered == nil {
		registered = make(map[string]string)
		s.registrations[studentID] = registered
	}
	for _, code := range req.CourseCodes {
		registered[code] = ""
	}
	s.log(r.Context(), "RegisterCourses", "student_id", studentID).InfoContext(r.Context(), "courses registered", "courses", req.CourseCodes)
	writeMessage(w, http.StatusOK, "Courses registered")
}

type sectionRegistration struct {
	CourseCode string `json:"courseCode"`
	SectionID  string `json:"sectionId"`
}

func (s *Server) registerSections(w http.ResponseWriter, r *http.Request, studentID string) {
	var req struct {
		Registrations []sectionRegistration `json:"registrations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Registrations) == 0 {
		writeMessage(w, http.StatusBadRequest, "registrations must list at least one section")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	registered := s.registrations[studentID]
	for _, reg := range req.Registrations {
		current, ok := registered[reg.CourseCode]
		if !ok {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Course %s is not registered", reg.CourseCode))
			return
		}
		if current != "" {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Course %s already has section %s", reg.CourseCode, current))
			return
		}
		course, _ := s.course(reg.CourseCode)
		section, found := findSection(course, reg.SectionID)
		if !found {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Section %s does not belong to %s", reg.SectionID, reg.CourseCode))
			return
		}
		if section.Capacity > 0 && s.enrolment[enrolmentKey(reg)] >= section.Capacity {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Section %s is full", reg.SectionID))
			return
		}
	}
	for _, reg := range req.Registrations {
		registered[reg.CourseCode] = reg.SectionID
		s.enrolment[enrolmentKey(reg)]++
	}
	s.log(r.Context(), "RegisterSections", "student_id", studentID).InfoContext(r.Context(), "sections registered", "sections", len(req.Registrations))
	writeMessage(w, http.StatusOK, "Sections registered")
}

func (s *Server) dropCourse(w http.ResponseWriter, r *http.Request, studentID string) {
	var req struct {
		CourseCode string `json:"courseCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.CourseCode) == "" {
		writeMessage(w, http.StatusBadRequest, "courseCode is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	section, ok := s.registrations[studentID][req.CourseCode]
	if !ok {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Course %s is not registered", req.CourseCode))
		return
	}
	delete(s.registrations[studentID], req.CourseCode)
	if section != "" {
		s.enrolment[enrolmentKey(sectionRegistration{CourseCode: req.CourseCode, SectionID: section})]--
	}
	s.log(r.Context(), "DropCourse", "student_id", studentID, "course_code", req.CourseCode).InfoContext(r.Context(), "course dropped")
	writeMessage(w, http.StatusOK, "Course dropped")
}

func findSection(course backend.CourseDTO, id string) (backend.SectionDTO, bool) {
	for _, section := range course.Sections {
		if section.SectionID == id {
			return section, true
		}
	}
	return backend.SectionDTO{}, false
}

func enrolmentKey(reg sectionRegistration) string {
	return reg.CourseCode + "/" + reg.SectionID
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
