package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/schedule"
	"github.com/example/campus-portal/internal/session"
	"github.com/example/campus-portal/internal/validation"
)

type catalogProvider interface {
	Available(ctx context.Context, studentID string) ([]registration.CourseOffering, error)
	Find(ctx context.Context, studentID, courseCode string) (registration.CourseOffering, error)
}

type registrar interface {
	Commit(ctx context.Context, studentID string, planner *registration.Planner) (registration.CommitPayload, error)
	Drop(ctx context.Context, studentID, courseCode string) error
}

// RegistrationHandler drives one planner per signed-in student.
type RegistrationHandler struct {
	catalog   catalogProvider
	registrar registrar
	validator *validation.Validator
	responder responder
	logger    *slog.Logger

	mu         sync.Mutex
	planners   map[string]*registration.Planner
	committing map[string]*registration.Planner
}

func NewRegistrationHandler(catalog catalogProvider, registrar registrar, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		catalog:    catalog,
		registrar:  registrar,
		validator:  validation.New(),
		responder:  newResponder(logger),
		logger:     logger,
		planners:   make(map[string]*registration.Planner),
		committing: make(map[string]*registration.Planner),
	}
}

func (h *RegistrationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RegistrationHandler", operation, attrs...)
}

// Reset discards every planner. It is subscribed to sign-out events so a
// later sign-in starts from an empty timetable.
func (h *RegistrationHandler) Reset() {
	if h == nil {
		return
	}
	h.mu.Lock()
	clear(h.planners)
	h.mu.Unlock()
}

// withPlanner runs fn against the caller's planner while holding the lock.
// A planner whose submission is in flight is off limits.
func (h *RegistrationHandler) withPlanner(studentID string, fn func(p *registration.Planner) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.committing[studentID] != nil {
		return errCommitInProgress
	}
	return fn(h.plannerLocked(studentID))
}

// plannerLocked returns the student's planner, starting a fresh one when
// there is none or the previous one was committed. h.mu must be held.
func (h *RegistrationHandler) plannerLocked(studentID string) *registration.Planner {
	p, ok := h.planners[studentID]
	if !ok || p.State() == registration.StateCommitted {
		p = registration.NewPlanner()
		h.planners[studentID] = p
	}
	return p
}

// beginCommit reserves the student's planner for a submission.
func (h *RegistrationHandler) beginCommit(studentID string) (*registration.Planner, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.committing[studentID] != nil {
		return nil, errCommitInProgress
	}
	p := h.plannerLocked(studentID)
	h.committing[studentID] = p
	return p, nil
}

// endCommit releases the reservation. A committed planner is replaced so
// the next request starts a new registration session.
func (h *RegistrationHandler) endCommit(studentID string, p *registration.Planner) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.committing[studentID] == p {
		delete(h.committing, studentID)
	}
	if h.planners[studentID] == p && p.State() == registration.StateCommitted {
		h.planners[studentID] = registration.NewPlanner()
	}
}

func studentID(r *http.Request) (string, bool) {
	current, ok := SessionFromContext(r.Context())
	if !ok || !current.Authenticated() || current.Role() != session.RoleStudent {
		return "", false
	}
	return current.Principal.ID, true
}

func (h *RegistrationHandler) ready(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h == nil || h.catalog == nil || h.registrar == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", false
	}
	id, ok := studentID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errNotSignedIn)
		return "", false
	}
	return id, true
}

// View lists the available courses next to the planner state. A fresh
// planner gets the first section of every course preselected.
func (h *RegistrationHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ready(w, r)
	if !ok {
		return
	}

	courses, err := h.catalog.Available(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var snap registration.Snapshot
	_ = h.withPlanner(id, func(p *registration.Planner) error {
		p.Preselect(courses)
		snap = p.Snapshot()
		return nil
	})
	h.responder.writeJSON(r.Context(), w, http.StatusOK, registrationView{Courses: courses, Planner: toPlannerDTO(snap)})
}

// AddCourse places a course, and the chosen or preselected section, on the timetable.
func (h *RegistrationHandler) AddCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ready(w, r)
	if !ok {
		return
	}

	var req addCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	req.CourseCode = strings.TrimSpace(req.CourseCode)
	if err := h.validator.Struct(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	course, err := h.catalog.Find(r.Context(), id, req.CourseCode)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "AddCourse", "student_id", id, "course_code", course.Code)
	var snap registration.Snapshot
	err = h.withPlanner(id, func(p *registration.Planner) error {
		sectionID := strings.TrimSpace(req.SectionID)
		if sectionID == "" {
			sectionID, _ = p.SectionChoice(course.Code)
		}
		if err := p.ProposeAddCourse(course, sectionID); err != nil {
			return err
		}
		snap = p.Snapshot()
		return nil
	})
	if err != nil {
		logger.InfoContext(r.Context(), "course not added", "error", err, "error_kind", registration.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "course added")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPlannerDTO(snap))
}

// RemoveCourse takes a course and its section off the timetable.
func (h *RegistrationHandler) RemoveCourse(w http.ResponseWriter, r *http.Request, courseCode string) {
	id, ok := h.ready(w, r)
	if !ok {
		return
	}

	var snap registration.Snapshot
	err := h.withPlanner(id, func(p *registration.Planner) error {
		if err := p.ProposeRemoveCourse(courseCode); err != nil {
			return err
		}
		snap = p.Snapshot()
		return nil
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.log(r.Context(), "RemoveCourse", "student_id", id, "course_code", courseCode).InfoContext(r.Context(), "course removed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPlannerDTO(snap))
}

// SelectSection records the section choice for a course not yet registered.
func (h *RegistrationHandler) SelectSection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ready(w, r)
	if !ok {
		return
	}

	var req selectSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var snap registration.Snapshot
	err := h.withPlanner(id, func(p *registration.Planner) error {
		if err := p.SelectSection(req.CourseCode, req.SectionID); err != nil {
			return err
		}
		snap = p.Snapshot()
		return nil
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPlannerDTO(snap))
}

// Clear empties the timetable.
func (h *RegistrationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ready(w, r)
	if !ok {
		return
	}

	var snap registration.Snapshot
	_ = h.withPlanner(id, func(p *registration.Planner) error {
		p.ClearAll()
		snap = p.Snapshot()
		return nil
	})
	h.log(r.Context(), "Clear", "student_id", id).InfoContext(r.Context(), "timetable cleared")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPlannerDTO(snap))
}

// Commit submits the timetable. The planner is reserved rather than locked
// during the backend calls, since a rejected token signs the student out
// and resets the handler from the same goroutine.
func (h *RegistrationHandler) Commit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ready(w, r)
	if !ok {
		return
	}

	p, err := h.beginCommit(id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	payload, err := h.registrar.Commit(r.Context(), id, p)
	h.endCommit(id, p)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, commitResponse{
		Message: "Registration successful.",
		Payload: payload,
	})
}

// Drop removes an already registered course on the backend.
func (h *RegistrationHandler) Drop(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ready(w, r)
	if !ok {
		return
	}

	var req dropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	req.CourseCode = strings.TrimSpace(req.CourseCode)
	if err := h.validator.Struct(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if err := h.registrar.Drop(r.Context(), id, req.CourseCode); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type addCourseRequest struct {
	CourseCode string `json:"courseCode" validate:"required"`
	SectionID  string `json:"sectionId"`
}

type selectSectionRequest struct {
	CourseCode string `json:"courseCode" validate:"required"`
	SectionID  string `json:"sectionId" validate:"required"`
}

type dropRequest struct {
	CourseCode string `json:"courseCode" validate:"required"`
}

type registrationView struct {
	Courses []registration.CourseOffering `json:"courses"`
	Planner plannerDTO                    `json:"planner"`
}

type plannerDTO struct {
	State      registration.State          `json:"state"`
	Registered []string                    `json:"registered"`
	Sections   map[string]string           `json:"sections"`
	Choices    map[string]string           `json:"choices"`
	Week       map[string][]schedule.Entry `json:"week"`
}

func toPlannerDTO(snap registration.Snapshot) plannerDTO {
	dto := plannerDTO{
		State:      snap.State,
		Registered: snap.Registered,
		Sections:   snap.Sections,
		Choices:    snap.Choices,
		Week:       make(map[string][]schedule.Entry),
	}
	if dto.Registered == nil {
		dto.Registered = []string{}
	}
	for _, entry := range snap.Entries {
		day := entry.Interval.Day.String()
		dto.Week[day] = append(dto.Week[day], entry)
	}
	return dto
}

type commitResponse struct {
	Message string                     `json:"message"`
	Payload registration.CommitPayload `json:"payload"`
}
