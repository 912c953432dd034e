package registration

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/example/campus-portal/internal/schedule"
)

func meeting(t *testing.T, day, start, end string) Meeting {
	t.Helper()
	interval, err := schedule.ParseInterval(day, start, end)
	if err != nil {
		t.Fatalf("ParseInterval: %v", err)
	}
	return Meeting{Interval: interval, Room: "R1"}
}

func lectureOnly(t *testing.T, code, day, start, end string) CourseOffering {
	t.Helper()
	return CourseOffering{Code: code, Name: code + " course", Lectures: []Meeting{meeting(t, day, start, end)}}
}

func withSections(t *testing.T) CourseOffering {
	t.Helper()
	course := lectureOnly(t, "CS201", "Sunday", "09:00 AM", "10:30 AM")
	course.Sections = []SectionOffering{
		{SectionID: "S1", TeachingAssistant: "Omar", Sessions: []Meeting{meeting(t, "Tuesday", "01:00 PM", "02:00 PM")}},
		{SectionID: "S2", TeachingAssistant: "Mona", Sessions: []Meeting{meeting(t, "Wednesday", "01:00 PM", "02:00 PM")}},
	}
	return course
}

func TestProposeAddCourseDetectsOverlap(t *testing.T) {
	p := NewPlanner()
	if err := p.ProposeAddCourse(lectureOnly(t, "CS101", "Monday", "10:00 AM", "11:30 AM"), ""); err != nil {
		t.Fatalf("first add: %v", err)
	}

	err := p.ProposeAddCourse(lectureOnly(t, "MATH1", "Monday", "11:00 AM", "12:00 PM"), "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %T", err)
	}
	if conflict.Day.String() != "Monday" || conflict.Existing.CourseCode != "CS101" {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}

	entries := p.Schedule().All()
	if len(entries) != 1 || entries[0].CourseCode != "CS101" {
		t.Fatalf("schedule changed after conflict: %+v", entries)
	}
	if diff := cmp.Diff([]string{"CS101"}, p.Registered()); diff != "" {
		t.Fatalf("registered mismatch (-want +got):\n%s", diff)
	}
}

func TestProposeAddCourseAllowsTouchingIntervals(t *testing.T) {
	p := NewPlanner()
	if err := p.ProposeAddCourse(lectureOnly(t, "CS101", "Monday", "10:00 AM", "11:00 AM"), ""); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := p.ProposeAddCourse(lectureOnly(t, "CS102", "Monday", "11:00 AM", "12:00 PM"), ""); err != nil {
		t.Fatalf("touching add: %v", err)
	}
	if got := p.Schedule().Len(); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
}

func TestProposeAddCourseSectionRequired(t *testing.T) {
	p := NewPlanner()
	for _, id := range []string{"", "S9"} {
		if err := p.ProposeAddCourse(withSections(t), id); !errors.Is(err, ErrSectionRequired) {
			t.Fatalf("section %q: error = %v, want ErrSectionRequired", id, err)
		}
	}
	if p.State() != StateEmpty || p.Schedule().Len() != 0 {
		t.Fatalf("planner changed: %+v", p.Snapshot())
	}
}

func TestProposeAddCourseChecksSectionAgainstOwnLecture(t *testing.T) {
	course := lectureOnly(t, "CS300", "Monday", "09:00 AM", "10:00 AM")
	course.Sections = []SectionOffering{{SectionID: "S1", Sessions: []Meeting{meeting(t, "Monday", "09:30 AM", "10:30 AM")}}}

	p := NewPlanner()
	if err := p.ProposeAddCourse(course, "S1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if p.Schedule().Len() != 0 {
		t.Fatal("partial add applied")
	}
}

func TestProposeAddCourseAtomicAcrossSections(t *testing.T) {
	p := NewPlanner()
	if err := p.ProposeAddCourse(lectureOnly(t, "LAB", "Tuesday", "01:30 PM", "03:00 PM"), ""); err != nil {
		t.Fatalf("setup add: %v", err)
	}
	if err := p.ProposeAddCourse(withSections(t), "S1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if len(p.Schedule().Course("CS201")) != 0 {
		t.Fatal("lecture of the rejected course was placed")
	}
	if err := p.ProposeAddCourse(withSections(t), "S2"); err != nil {
		t.Fatalf("add with free section: %v", err)
	}
	if id, _ := p.SectionChoice("CS201"); id != "S2" {
		t.Fatalf("section = %q, want S2", id)
	}
}

func TestRemoveThenReadd(t *testing.T) {
	p := NewPlanner()
	course := withSections(t)
	if err := p.ProposeAddCourse(course, "S1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := p.Snapshot()

	if err := p.ProposeRemoveCourse("CS201"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(p.Schedule().Course("CS201")) != 0 || p.IsRegistered("CS201") {
		t.Fatalf("course still present: %+v", p.Snapshot())
	}
	if _, ok := p.SectionChoice("CS201"); ok {
		t.Fatal("section choice survived removal")
	}

	if err := p.ProposeAddCourse(course, "S1"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if diff := cmp.Diff(before, p.Snapshot()); diff != "" {
		t.Fatalf("re-add differs (-before +after):\n%s", diff)
	}
}

func TestReaddingRegisteredCourseIsNoop(t *testing.T) {
	p := NewPlanner()
	course := lectureOnly(t, "CS101", "Monday", "09:00 AM", "10:00 AM")
	for i := 0; i < 2; i++ {
		if err := p.ProposeAddCourse(course, ""); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if p.Schedule().Len() != 1 || len(p.Registered()) != 1 {
		t.Fatalf("duplicate entries: %+v", p.Snapshot())
	}
}

func TestBuildCommitPayload(t *testing.T) {
	p := NewPlanner()
	if _, err := p.BuildCommitPayload(); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("error = %v, want ErrNothingSelected", err)
	}

	if err := p.ProposeAddCourse(lectureOnly(t, "CS101", "Monday", "09:00 AM", "10:00 AM"), ""); err != nil {
		t.Fatalf("add CS101: %v", err)
	}
	if err := p.ProposeAddCourse(withSections(t), "S1"); err != nil {
		t.Fatalf("add CS201: %v", err)
	}

	got, err := p.BuildCommitPayload()
	if err != nil {
		t.Fatalf("BuildCommitPayload: %v", err)
	}
	want := CommitPayload{
		CourseCodes:          []string{"CS101", "CS201"},
		SectionRegistrations: []SectionRegistration{{CourseCode: "CS201", SectionID: "S1"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestClearAllMatchesFreshPlanner(t *testing.T) {
	p := NewPlanner()
	p.Preselect([]CourseOffering{withSections(t)})
	if err := p.ProposeAddCourse(lectureOnly(t, "CS101", "Monday", "09:00 AM", "10:00 AM"), ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := p.ProposeAddCourse(lectureOnly(t, "PHY", "Thursday", "09:00 AM", "10:00 AM"), ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := p.ProposeRemoveCourse("PHY"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := p.SelectSection("CS201", "S2"); err != nil {
		t.Fatalf("select: %v", err)
	}

	p.ClearAll()

	if diff := cmp.Diff(NewPlanner().Snapshot(), p.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("cleared planner differs from fresh (-fresh +cleared):\n%s", diff)
	}
	if diff := cmp.Diff(*NewPlanner(), *p, cmp.AllowUnexported(Planner{}, schedule.Week{}), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("cleared planner struct differs (-fresh +cleared):\n%s", diff)
	}
}

func TestSelectSection(t *testing.T) {
	p := NewPlanner()
	course := withSections(t)
	p.Preselect([]CourseOffering{course})
	if id, ok := p.SectionChoice("CS201"); !ok || id != "S1" {
		t.Fatalf("preselected = %q, %v; want S1", id, ok)
	}

	if err := p.SelectSection("CS201", "S2"); err != nil {
		t.Fatalf("SelectSection: %v", err)
	}
	p.Preselect([]CourseOffering{course})
	if id, _ := p.SectionChoice("CS201"); id != "S2" {
		t.Fatalf("preselect overwrote choice: %q", id)
	}
	if p.Schedule().Len() != 0 {
		t.Fatal("selecting a section must not touch the schedule")
	}

	id, _ := p.SectionChoice("CS201")
	if err := p.ProposeAddCourse(course, id); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := p.SelectSection("CS201", "S1"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("error = %v, want ErrAlreadyRegistered", err)
	}
}

func TestCommittedPlannerIsTerminal(t *testing.T) {
	p := NewPlanner()
	course := lectureOnly(t, "CS101", "Monday", "09:00 AM", "10:00 AM")
	if err := p.ProposeAddCourse(course, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	p.MarkCommitted()

	if p.State() != StateCommitted || p.Schedule().Len() != 0 {
		t.Fatalf("unexpected committed state: %+v", p.Snapshot())
	}
	if err := p.ProposeAddCourse(course, ""); !errors.Is(err, ErrCommitted) {
		t.Fatalf("add after commit: %v", err)
	}
	if err := p.ProposeRemoveCourse("CS101"); !errors.Is(err, ErrCommitted) {
		t.Fatalf("remove after commit: %v", err)
	}
	if err := p.SelectSection("CS201", "S1"); !errors.Is(err, ErrCommitted) {
		t.Fatalf("select after commit: %v", err)
	}
}

func TestStateTransitions(t *testing.T) {
	p := NewPlanner()
	if p.State() != StateEmpty {
		t.Fatalf("state = %s, want empty", p.State())
	}
	if err := p.ProposeAddCourse(lectureOnly(t, "CS101", "Monday", "09:00 AM", "10:00 AM"), ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.State() != StateBuilding {
		t.Fatalf("state = %s, want building", p.State())
	}
	p.ClearAll()
	if p.State() != StateEmpty {
		t.Fatalf("state = %s, want empty", p.State())
	}
}
