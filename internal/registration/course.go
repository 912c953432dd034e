package registration

import (
	"github.com/example/campus-portal/internal/schedule"
)

// Meeting is one weekly occurrence of a lecture or section.
type Meeting struct {
	Interval schedule.Interval `json:"interval"`
	Room     string            `json:"room,omitempty"`
}

// SectionOffering is a lab or tutorial group of a course.
type SectionOffering struct {
	SectionID         string    `json:"sectionId"`
	TeachingAssistant string    `json:"teachingAssistant,omitempty"`
	Capacity          int       `json:"capacity,omitempty"`
	Sessions          []Meeting `json:"sessions"`
}

// CourseOffering is a course a student may register for.
type CourseOffering struct {
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	CreditHours int               `json:"creditHours,omitempty"`
	Instructor  string            `json:"instructor,omitempty"`
	Lectures    []Meeting         `json:"lectureSessions"`
	Sections    []SectionOffering `json:"sections"`
}

// Section returns the section with the given id.
func (c CourseOffering) Section(id string) (SectionOffering, bool) {
	for _, section := range c.Sections {
		if section.SectionID == id {
			return section, true
		}
	}
	return SectionOffering{}, false
}

// HasSections reports whether a section must be chosen to register.
func (c CourseOffering) HasSections() bool {
	return len(c.Sections) > 0
}

func (c CourseOffering) entries(section *SectionOffering) []schedule.Entry {
	out := make([]schedule.Entry, 0, len(c.Lectures))
	for _, lecture := range c.Lectures {
		out = append(out, schedule.Entry{
			Kind:       schedule.KindLecture,
			CourseCode: c.Code,
			CourseName: c.Name,
			Room:       lecture.Room,
			Instructor: c.Instructor,
			Interval:   lecture.Interval,
		})
	}
	if section == nil {
		return out
	}
	for _, meeting := range section.Sessions {
		out = append(out, schedule.Entry{
			Kind:       schedule.KindSection,
			CourseCode: c.Code,
			CourseName: c.Name,
			SectionID:  section.SectionID,
			Room:       meeting.Room,
			Instructor: section.TeachingAssistant,
			Interval:   meeting.Interval,
		})
	}
	return out
}
