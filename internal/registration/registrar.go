package registration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/campus-portal/internal/logging"
)

// RegistrationAPI is the backend surface used to submit a selection.
type RegistrationAPI interface {
	RegisterCourses(ctx context.Context, studentID string, courseCodes []string) error
	RegisterSections(ctx context.Context, studentID string, registrations []SectionRegistration) error
	DropCourse(ctx context.Context, studentID, courseCode string) error
}

// CacheInvalidator forgets cached offerings of a student after the backend
// state changed.
type CacheInvalidator interface {
	Invalidate(studentID string)
}

// Registrar submits planner selections and drops courses.
type Registrar struct {
	api    RegistrationAPI
	cache  CacheInvalidator
	logger *slog.Logger
}

// NewRegistrar constructs a Registrar. cache may be nil.
func NewRegistrar(api RegistrationAPI, cache CacheInvalidator) *Registrar {
	return NewRegistrarWithLogger(api, cache, nil)
}

// NewRegistrarWithLogger constructs a Registrar with a specific logger.
func NewRegistrarWithLogger(api RegistrationAPI, cache CacheInvalidator, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{api: api, cache: cache, logger: logger}
}

func (r *Registrar) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	pairs := append([]any{"service", "Registrar", "operation", operation}, attrs...)
	return logging.FromContext(ctx, r.logger).With(pairs...)
}

// Commit submits the planner's selection: courses first, then sections.
// On success the planner is marked committed. On failure the selection is
// kept so the student can retry, and a retry skips the courses the backend
// already accepted.
func (r *Registrar) Commit(ctx context.Context, studentID string, planner *Planner) (payload CommitPayload, err error) {
	if r == nil || r.api == nil {
		err = fmt.Errorf("registrar not configured")
		return
	}
	if planner == nil {
		err = fmt.Errorf("planner is nil")
		return
	}
	studentID = strings.TrimSpace(studentID)

	logger := r.loggerWith(ctx, "Commit", "student_id", studentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration commit failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "registration committed",
			"courses", len(payload.CourseCodes),
			"sections", len(payload.SectionRegistrations),
		)
	}()

	if planner.State() == StateCommitted {
		err = ErrCommitted
		return
	}
	payload, err = planner.BuildCommitPayload()
	if err != nil {
		return
	}

	if pending := planner.pendingCourses(payload.CourseCodes); len(pending) > 0 {
		if callErr := r.api.RegisterCourses(ctx, studentID, pending); callErr != nil {
			err = &CommitError{Step: StepRegisterCourses, Err: callErr}
			return
		}
		planner.markSubmitted(pending)
	}
	if len(payload.SectionRegistrations) > 0 {
		if callErr := r.api.RegisterSections(ctx, studentID, payload.SectionRegistrations); callErr != nil {
			err = &CommitError{Step: StepRegisterSections, Err: callErr}
			return
		}
	}

	planner.MarkCommitted()
	r.invalidate(studentID)
	return
}

// Drop removes an already committed course on the backend.
func (r *Registrar) Drop(ctx context.Context, studentID, courseCode string) (err error) {
	if r == nil || r.api == nil {
		return fmt.Errorf("registrar not configured")
	}
	studentID = strings.TrimSpace(studentID)
	courseCode = strings.TrimSpace(courseCode)

	logger := r.loggerWith(ctx, "Drop", "student_id", studentID, "course_code", courseCode)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "drop failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "course dropped")
	}()

	if courseCode == "" {
		err = ErrInvalidCourse
		return
	}
	if callErr := r.api.DropCourse(ctx, studentID, courseCode); callErr != nil {
		err = &CommitError{Step: StepDrop, Err: callErr}
		return
	}
	r.invalidate(studentID)
	return nil
}

func (r *Registrar) invalidate(studentID string) {
	if r.cache != nil {
		r.cache.Invalidate(studentID)
	}
}
