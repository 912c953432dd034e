// Package catalog fetches and caches the course offerings open to a student.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/example/campus-portal/internal/backend"
	"github.com/example/campus-portal/internal/logging"
	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/schedule"
	"github.com/example/campus-portal/internal/validation"
)

// DefaultTTL bounds how long offerings are served from memory.
const DefaultTTL = 5 * time.Minute

// Source fetches raw offerings from the backend.
type Source interface {
	AvailableCourses(ctx context.Context, studentID string) ([]backend.CourseDTO, error)
}

// Provider serves converted offerings from a per-student cache. Offerings
// that fail validation or time parsing are left out of the catalog.
type Provider struct {
	source   Source
	cache    *gocache.Cache
	validate *validation.Validator
	logger   *slog.Logger
}

// NewProvider constructs a Provider. A non-positive ttl uses DefaultTTL.
func NewProvider(source Source, ttl time.Duration) *Provider {
	return NewProviderWithLogger(source, ttl, nil)
}

// NewProviderWithLogger constructs a Provider with a specific logger.
func NewProviderWithLogger(source Source, ttl time.Duration, logger *slog.Logger) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		source:   source,
		cache:    gocache.New(ttl, 2*ttl),
		validate: validation.New(),
		logger:   logger,
	}
}

func cacheKey(studentID string) string {
	return "available:" + studentID
}

// Available returns the offerings for the student, fetching them on a cache miss.
func (p *Provider) Available(ctx context.Context, studentID string) (courses []registration.CourseOffering, err error) {
	if p == nil || p.source == nil {
		return nil, fmt.Errorf("catalog provider not configured")
	}
	studentID = strings.TrimSpace(studentID)

	if cached, ok := p.cache.Get(cacheKey(studentID)); ok {
		return cloneOfferings(cached.([]registration.CourseOffering)), nil
	}

	logger := logging.FromContext(ctx, p.logger).With("service", "CatalogProvider", "operation", "Available", "student_id", studentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "fetching offerings failed", "error", err)
			return
		}
		logger.InfoContext(ctx, "offerings fetched", "courses", len(courses))
	}()

	dtos, err := p.source.AvailableCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}
	courses = make([]registration.CourseOffering, 0, len(dtos))
	for _, dto := range dtos {
		offering, convErr := p.convert(dto)
		if convErr != nil {
			logger.WarnContext(ctx, "skipping malformed offering", "course_code", dto.Code, "error", convErr)
			continue
		}
		courses = append(courses, offering)
	}

	p.cache.SetDefault(cacheKey(studentID), courses)
	return cloneOfferings(courses), nil
}

// Find returns one offering of the student's catalog.
func (p *Provider) Find(ctx context.Context, studentID, courseCode string) (registration.CourseOffering, error) {
	courses, err := p.Available(ctx, studentID)
	if err != nil {
		return registration.CourseOffering{}, err
	}
	for _, course := range courses {
		if course.Code == courseCode {
			return course, nil
		}
	}
	return registration.CourseOffering{}, fmt.Errorf("%w: %s", ErrUnknownCourse, courseCode)
}

// Invalidate forgets the cached offerings of the student.
func (p *Provider) Invalidate(studentID string) {
	if p == nil {
		return
	}
	p.cache.Delete(cacheKey(strings.TrimSpace(studentID)))
}

// Flush drops every cached catalog.
func (p *Provider) Flush() {
	if p == nil {
		return
	}
	p.cache.Flush()
}

func (p *Provider) convert(dto backend.CourseDTO) (registration.CourseOffering, error) {
	if err := p.validate.Struct(dto); err != nil {
		return registration.CourseOffering{}, err
	}
	return Convert(dto)
}

// Convert turns a backend course into an offering, parsing its 12-hour times.
func Convert(dto backend.CourseDTO) (registration.CourseOffering, error) {
	offering := registration.CourseOffering{
		Code:        strings.TrimSpace(dto.Code),
		Name:        dto.Name,
		CreditHours: dto.CreditHours,
		Instructor:  dto.Instructor,
	}
	for i, lecture := range dto.LectureSessions {
		m, err := convertMeeting(lecture)
		if err != nil {
			return registration.CourseOffering{}, fmt.Errorf("course %s lecture %d: %w", dto.Code, i, err)
		}
		offering.Lectures = append(offering.Lectures, m)
	}
	for _, section := range dto.Sections {
		converted := registration.SectionOffering{
			SectionID:         strings.TrimSpace(section.SectionID),
			TeachingAssistant: section.TeachingAssistant,
			Capacity:          section.Capacity,
		}
		for i, session := range section.Sessions {
			m, err := convertMeeting(session)
			if err != nil {
				return registration.CourseOffering{}, fmt.Errorf("course %s section %s session %d: %w", dto.Code, section.SectionID, i, err)
			}
			converted.Sessions = append(converted.Sessions, m)
		}
		offering.Sections = append(offering.Sections, converted)
	}
	return offering, nil
}

func convertMeeting(dto backend.MeetingDTO) (registration.Meeting, error) {
	interval, err := schedule.ParseInterval(dto.Day, dto.StartTime, dto.EndTime)
	if err != nil {
		return registration.Meeting{}, err
	}
	return registration.Meeting{Interval: interval, Room: dto.Room}, nil
}

func cloneOfferings(in []registration.CourseOffering) []registration.CourseOffering {
	out := make([]registration.CourseOffering, len(in))
	for i, course := range in {
		course.Lectures = append([]registration.Meeting(nil), course.Lectures...)
		sections := make([]registration.SectionOffering, len(course.Sections))
		for j, section := range course.Sections {
			section.Sessions = append([]registration.Meeting(nil), section.Sessions...)
			sections[j] = section
		}
		if course.Sections == nil {
			sections = nil
		}
		course.Sections = sections
		out[i] = course
	}
	return out
}
