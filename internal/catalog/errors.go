package catalog

import "errors"

// ErrUnknownCourse is returned when a course is not offered to the student.
var ErrUnknownCourse = errors.New("catalog: unknown course")
