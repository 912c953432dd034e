package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/testfixtures"
)

func init() {
	DisableStyling()
}

func TestPrintTimetable(t *testing.T) {
	planner := registration.NewPlanner()
	if err := planner.ProposeAddCourse(testfixtures.CS101(), "S2"); err != nil {
		t.Fatalf("ProposeAddCourse() error = %v", err)
	}

	var buf bytes.Buffer
	PrintTimetable(&buf, planner.Schedule())
	out := buf.String()

	for _, want := range []string{"Mon", "09:00 AM - 10:30 AM", "Wed", "section S2", "Lab 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("timetable missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Mon") > strings.Index(out, "Wed") {
		t.Errorf("expected Monday before Wednesday:\n%s", out)
	}
}

func TestPrintCoursesMarksSelection(t *testing.T) {
	planner := registration.NewPlanner()
	planner.Preselect(testfixtures.Courses())
	if err := planner.ProposeAddCourse(testfixtures.HIST110(), ""); err != nil {
		t.Fatalf("ProposeAddCourse() error = %v", err)
	}

	var buf bytes.Buffer
	PrintCourses(&buf, testfixtures.Courses(), planner)
	out := buf.String()

	for _, want := range []string{"CS101", "* S1", "added", "HIST110"} {
		if !strings.Contains(out, want) {
			t.Errorf("course table missing %q:\n%s", want, out)
		}
	}
}

func TestConflictMessage(t *testing.T) {
	planner := registration.NewPlanner()
	if err := planner.ProposeAddCourse(testfixtures.CS101(), "S1"); err != nil {
		t.Fatalf("ProposeAddCourse() error = %v", err)
	}
	err := planner.ProposeAddCourse(testfixtures.MATH201(), "M1")
	conflict, ok := err.(*registration.ConflictError)
	if !ok {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	want := "MATH201 clashes with CS101 on Monday (09:00 AM - 10:30 AM)"
	if got := ConflictMessage(conflict); got != want {
		t.Fatalf("ConflictMessage() = %q, want %q", got, want)
	}
}
