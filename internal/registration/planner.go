package registration

import (
	"fmt"
	"strings"

	"github.com/example/campus-portal/internal/schedule"
)

// State is the lifecycle stage of a Planner.
type State string

const (
	StateEmpty     State = "empty"
	StateBuilding  State = "building"
	StateCommitted State = "committed"
)

// SectionRegistration pairs a registered course with its section.
type SectionRegistration struct {
	CourseCode string `json:"courseCode"`
	SectionID  string `json:"sectionId"`
}

// CommitPayload is the selection submitted to the registration API.
type CommitPayload struct {
	CourseCodes          []string              `json:"courseCodes"`
	SectionRegistrations []SectionRegistration `json:"sectionRegistrations"`
}

// Planner builds a conflict-free weekly timetable for one registration
// session. A Planner is owned by a single flow and is not safe for
// concurrent use.
type Planner struct {
	week       schedule.Week
	registered []string
	sections   map[string]string
	choices    map[string]string
	committed  bool

	// submitted holds courses the backend accepted during an earlier,
	// partially failed commit. It survives ClearAll.
	submitted map[string]bool
}

// NewPlanner returns an empty planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// State reports the planner's lifecycle stage.
func (p *Planner) State() State {
	switch {
	case p.committed:
		return StateCommitted
	case len(p.registered) > 0:
		return StateBuilding
	}
	return StateEmpty
}

// ProposeAddCourse places every lecture of the course and every session of
// the chosen section, or nothing at all. An empty sectionID means no section.
func (p *Planner) ProposeAddCourse(course CourseOffering, sectionID string) error {
	if p.committed {
		return ErrCommitted
	}
	code := strings.TrimSpace(course.Code)
	if code == "" {
		return ErrInvalidCourse
	}
	if p.IsRegistered(code) {
		return nil
	}
	course.Code = code

	var chosen *SectionOffering
	if course.HasSections() {
		section, ok := course.Section(sectionID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrSectionRequired, code)
		}
		chosen = &section
	}

	if conflict, ok := p.week.Add(course.entries(chosen)...); !ok {
		return &ConflictError{Day: conflict.Day, Existing: conflict.Existing, Candidate: conflict.Candidate}
	}

	p.registered = append(p.registered, code)
	if chosen != nil {
		if p.sections == nil {
			p.sections = make(map[string]string)
		}
		p.sections[code] = chosen.SectionID
	}
	delete(p.choices, code)
	return nil
}

// ProposeRemoveCourse drops the course from the timetable and the selection.
// Unknown courses are ignored.
func (p *Planner) ProposeRemoveCourse(courseCode string) error {
	if p.committed {
		return ErrCommitted
	}
	code := strings.TrimSpace(courseCode)
	p.week.RemoveCourse(code)
	for i, registered := range p.registered {
		if registered == code {
			p.registered = append(p.registered[:i:i], p.registered[i+1:]...)
			break
		}
	}
	if len(p.registered) == 0 {
		p.registered = nil
	}
	delete(p.sections, code)
	if len(p.sections) == 0 {
		p.sections = nil
	}
	return nil
}

// SelectSection records the section the next add of the course will use.
// An empty sectionID clears the choice.
func (p *Planner) SelectSection(courseCode, sectionID string) error {
	if p.committed {
		return ErrCommitted
	}
	code := strings.TrimSpace(courseCode)
	if p.IsRegistered(code) {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, code)
	}
	sectionID = strings.TrimSpace(sectionID)
	if sectionID == "" {
		delete(p.choices, code)
		if len(p.choices) == 0 {
			p.choices = nil
		}
		return nil
	}
	if p.choices == nil {
		p.choices = make(map[string]string)
	}
	p.choices[code] = sectionID
	return nil
}

// SectionChoice returns the section of a registered course, or the tentative
// choice for an unregistered one.
func (p *Planner) SectionChoice(courseCode string) (string, bool) {
	if id, ok := p.sections[courseCode]; ok {
		return id, true
	}
	id, ok := p.choices[courseCode]
	return id, ok
}

// Preselect defaults the tentative choice of each course with sections to its
// first section. Existing choices and registered courses are left alone.
func (p *Planner) Preselect(courses []CourseOffering) {
	if p.committed {
		return
	}
	for _, course := range courses {
		if !course.HasSections() || p.IsRegistered(course.Code) {
			continue
		}
		if _, ok := p.choices[course.Code]; ok {
			continue
		}
		if p.choices == nil {
			p.choices = make(map[string]string)
		}
		p.choices[course.Code] = course.Sections[0].SectionID
	}
}

// ClearAll empties the timetable, the selection and every section choice.
func (p *Planner) ClearAll() {
	if p.committed {
		return
	}
	p.reset()
}

func (p *Planner) reset() {
	p.week.Clear()
	p.registered = nil
	p.sections = nil
	p.choices = nil
}

// BuildCommitPayload returns the selection in registration order.
func (p *Planner) BuildCommitPayload() (CommitPayload, error) {
	if len(p.registered) == 0 {
		return CommitPayload{}, ErrNothingSelected
	}
	payload := CommitPayload{
		CourseCodes:          append([]string(nil), p.registered...),
		SectionRegistrations: []SectionRegistration{},
	}
	for _, code := range p.registered {
		if id, ok := p.sections[code]; ok {
			payload.SectionRegistrations = append(payload.SectionRegistrations, SectionRegistration{CourseCode: code, SectionID: id})
		}
	}
	return payload, nil
}

// MarkCommitted clears the planner and makes it terminal.
func (p *Planner) MarkCommitted() {
	p.reset()
	p.submitted = nil
	p.committed = true
}

// pendingCourses returns the codes the backend has not accepted yet.
func (p *Planner) pendingCourses(codes []string) []string {
	pending := make([]string, 0, len(codes))
	for _, code := range codes {
		if !p.submitted[code] {
			pending = append(pending, code)
		}
	}
	return pending
}

func (p *Planner) markSubmitted(codes []string) {
	if p.submitted == nil {
		p.submitted = make(map[string]bool, len(codes))
	}
	for _, code := range codes {
		p.submitted[code] = true
	}
}

// IsRegistered reports whether the course is part of the selection.
func (p *Planner) IsRegistered(courseCode string) bool {
	for _, code := range p.registered {
		if code == courseCode {
			return true
		}
	}
	return false
}

// Registered returns the selected course codes in the order they were added.
func (p *Planner) Registered() []string {
	return append([]string(nil), p.registered...)
}

// Schedule returns a copy of the timetable.
func (p *Planner) Schedule() schedule.Week {
	return p.week.Clone()
}

// Snapshot is a comparable view of a planner's state.
type Snapshot struct {
	State      State             `json:"state"`
	Registered []string          `json:"registered"`
	Sections   map[string]string `json:"sections"`
	Choices    map[string]string `json:"choices"`
	Entries    []schedule.Entry  `json:"entries"`
}

// Snapshot captures the planner's state.
func (p *Planner) Snapshot() Snapshot {
	return Snapshot{
		State:      p.State(),
		Registered: p.Registered(),
		Sections:   copyMap(p.sections),
		Choices:    copyMap(p.choices),
		Entries:    p.week.All(),
	}
}

func copyMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
