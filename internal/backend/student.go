package backend

import (
	"context"
	"net/http"

	"github.com/example/campus-portal/internal/registration"
)

var _ registration.RegistrationAPI = (*Client)(nil)

// MeetingDTO is a lecture or section session as sent by the backend.
type MeetingDTO struct {
	Day       string `json:"day" validate:"required,weekday"`
	StartTime string `json:"startTime" validate:"required,clock"`
	EndTime   string `json:"endTime" validate:"required,clock"`
	Room      string `json:"room"`
}

// SectionDTO is a section offering as sent by the backend.
type SectionDTO struct {
	SectionID         string       `json:"sectionId" validate:"required"`
	TeachingAssistant string       `json:"teachingAssistant"`
	Capacity          int          `json:"capacity" validate:"gte=0"`
	Sessions          []MeetingDTO `json:"sessions" validate:"dive"`
}

// CourseDTO is a course offering as sent by the backend.
type CourseDTO struct {
	Code            string       `json:"code" validate:"required"`
	Name            string       `json:"name" validate:"required"`
	CreditHours     int          `json:"creditHours" validate:"gte=0"`
	Instructor      string       `json:"instructor"`
	LectureSessions []MeetingDTO `json:"lectureSessions" validate:"dive"`
	Sections        []SectionDTO `json:"sections" validate:"dive"`
}

type availableCoursesResponse struct {
	Courses []CourseDTO `json:"courses"`
}

// AvailableCourses lists the offerings the student may register for.
func (c *Client) AvailableCourses(ctx context.Context, studentID string) ([]CourseDTO, error) {
	var resp availableCoursesResponse
	err := c.do(ctx, request{
		method:        http.MethodGet,
		path:          studentPath("/api/student/available-courses/", studentID),
		authenticated: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Courses, nil
}

// RegisterCourses submits the selected course codes.
func (c *Client) RegisterCourses(ctx context.Context, studentID string, courseCodes []string) error {
	return c.do(ctx, request{
		method:        http.MethodPost,
		path:          studentPath("/api/student/register-course/", studentID),
		body:          map[string][]string{"courseCodes": courseCodes},
		authenticated: true,
	}, nil)
}

// RegisterSections submits the section of each registered course that has one.
func (c *Client) RegisterSections(ctx context.Context, studentID string, registrations []registration.SectionRegistration) error {
	return c.do(ctx, request{
		method:        http.MethodPost,
		path:          studentPath("/api/student/register-section/", studentID),
		body:          map[string][]registration.SectionRegistration{"registrations": registrations},
		authenticated: true,
	}, nil)
}

// DropCourse removes a registered course.
func (c *Client) DropCourse(ctx context.Context, studentID, courseCode string) error {
	return c.do(ctx, request{
		method:        http.MethodPost,
		path:          studentPath("/api/student/drop-course/", studentID),
		body:          map[string]string{"courseCode": courseCode},
		authenticated: true,
	}, nil)
}
