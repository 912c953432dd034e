package registration

import (
	"errors"
	"fmt"

	"github.com/example/campus-portal/internal/schedule"
)

var (
	// ErrSectionRequired is returned when a course with sections is added without a valid section.
	ErrSectionRequired = errors.New("registration: section required")
	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("registration: schedule conflict")
	// ErrNothingSelected is returned when a commit is attempted with no registered course.
	ErrNothingSelected = errors.New("registration: nothing selected")
	// ErrAlreadyRegistered is returned when changing the section of a registered course.
	ErrAlreadyRegistered = errors.New("registration: course already registered")
	// ErrCommitted is returned by mutations on a planner whose selection was committed.
	ErrCommitted = errors.New("registration: planner already committed")
	// ErrInvalidCourse is returned for offerings without a course code.
	ErrInvalidCourse = errors.New("registration: invalid course")
)

// ConflictError reports the placed entry that blocked an add.
type ConflictError struct {
	Day       schedule.Weekday
	Existing  schedule.Entry
	Candidate schedule.Entry
}

func (e *ConflictError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s conflicts with %s %s on %s (%s - %s)",
		e.Candidate.CourseCode, e.Existing.CourseCode, e.Existing.Kind, e.Day,
		e.Existing.Interval.Start, e.Existing.Interval.End)
}

// Is reports ErrConflict as the error's kind.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Commit steps reported by CommitError.
const (
	StepRegisterCourses  = "register-course"
	StepRegisterSections = "register-section"
	StepDrop             = "drop-course"
)

// CommitError wraps a failed call to the registration API.
type CommitError struct {
	Step string
	Err  error
}

func (e *CommitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("registration: %s failed: %v", e.Step, e.Err)
}

func (e *CommitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorKind maps registration errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrSectionRequired):
		return "section_required"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNothingSelected):
		return "nothing_selected"
	case errors.Is(err, ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, ErrCommitted):
		return "committed"
	case errors.Is(err, ErrInvalidCourse):
		return "invalid_course"
	}
	var commitErr *CommitError
	if errors.As(err, &commitErr) {
		return "commit_failed"
	}
	return "unexpected"
}
