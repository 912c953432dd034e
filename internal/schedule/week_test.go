package schedule

import (
	"testing"
)

func mustInterval(t *testing.T, day, start, end string) Interval {
	t.Helper()
	interval, err := ParseInterval(day, start, end)
	if err != nil {
		t.Fatalf("ParseInterval(%s, %s, %s): %v", day, start, end, err)
	}
	return interval
}

func lecture(t *testing.T, code, day, start, end string) Entry {
	t.Helper()
	return Entry{Kind: KindLecture, CourseCode: code, CourseName: code, Interval: mustInterval(t, day, start, end)}
}

func TestIntervalOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b [3]string
		want bool
	}{
		{name: "partial overlap", a: [3]string{"Monday", "09:00 AM", "10:30 AM"}, b: [3]string{"Monday", "10:00 AM", "11:00 AM"}, want: true},
		{name: "containment", a: [3]string{"Monday", "09:00 AM", "12:00 PM"}, b: [3]string{"Monday", "10:00 AM", "11:00 AM"}, want: true},
		{name: "touching", a: [3]string{"Monday", "09:00 AM", "10:00 AM"}, b: [3]string{"Monday", "10:00 AM", "11:00 AM"}, want: false},
		{name: "different days", a: [3]string{"Monday", "09:00 AM", "10:00 AM"}, b: [3]string{"Tuesday", "09:00 AM", "10:00 AM"}, want: false},
		{name: "identical", a: [3]string{"Sunday", "12:00 AM", "01:00 AM"}, b: [3]string{"Sunday", "12:00 AM", "01:00 AM"}, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := mustInterval(t, tc.a[0], tc.a[1], tc.a[2])
			b := mustInterval(t, tc.b[0], tc.b[1], tc.b[2])
			if got := a.Overlaps(b); got != tc.want {
				t.Fatalf("a.Overlaps(b) = %v, want %v", got, tc.want)
			}
			if got := b.Overlaps(a); got != tc.want {
				t.Fatalf("b.Overlaps(a) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewIntervalRejectsEmptySpan(t *testing.T) {
	if _, err := ParseInterval("Monday", "10:00 AM", "10:00 AM"); err == nil {
		t.Fatal("expected error for zero-length interval")
	}
	if _, err := ParseInterval("Monday", "11:00 AM", "10:00 AM"); err == nil {
		t.Fatal("expected error for reversed interval")
	}
}

func TestWeekAddKeepsEntriesSorted(t *testing.T) {
	var week Week
	if _, ok := week.Add(lecture(t, "CS201", "Monday", "01:00 PM", "02:00 PM")); !ok {
		t.Fatal("first add rejected")
	}
	if _, ok := week.Add(lecture(t, "CS101", "Monday", "09:00 AM", "10:00 AM")); !ok {
		t.Fatal("second add rejected")
	}

	entries := week.Day(Weekday(1))
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries on Monday, got %d", len(entries))
	}
	if entries[0].CourseCode != "CS101" || entries[1].CourseCode != "CS201" {
		t.Fatalf("entries not sorted by start: %+v", entries)
	}
}

func TestWeekAddIsAtomic(t *testing.T) {
	var week Week
	week.Add(lecture(t, "MATH1", "Tuesday", "10:00 AM", "11:00 AM"))

	conflict, ok := week.Add(
		lecture(t, "CS101", "Monday", "09:00 AM", "10:00 AM"),
		lecture(t, "CS101", "Tuesday", "10:30 AM", "11:30 AM"),
	)
	if ok {
		t.Fatal("expected conflict")
	}
	if conflict.Existing.CourseCode != "MATH1" || conflict.Day.String() != "Tuesday" {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
	if week.Len() != 1 {
		t.Fatalf("week mutated on conflict: %d entries", week.Len())
	}
}

func TestDetectConflictWithinCandidates(t *testing.T) {
	candidates := []Entry{
		lecture(t, "CS101", "Monday", "09:00 AM", "10:00 AM"),
		{Kind: KindSection, CourseCode: "CS101", SectionID: "S1", Interval: mustInterval(t, "Monday", "09:30 AM", "10:30 AM")},
	}
	conflict, found := DetectConflict(nil, candidates)
	if !found {
		t.Fatal("expected lecture and section to conflict")
	}
	if conflict.Candidate.Kind != KindSection {
		t.Fatalf("unexpected candidate: %+v", conflict.Candidate)
	}
}

func TestWeekAddDeduplicatesSameSlot(t *testing.T) {
	var week Week
	entry := lecture(t, "CS101", "Monday", "09:00 AM", "10:00 AM")
	week.Add(entry)
	if _, ok := week.Add(entry); !ok {
		t.Fatal("re-adding the same slot must not conflict")
	}
	if week.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", week.Len())
	}
}

func TestWeekRemoveCourseAndClone(t *testing.T) {
	var week Week
	week.Add(
		lecture(t, "CS101", "Monday", "09:00 AM", "10:00 AM"),
		lecture(t, "CS101", "Wednesday", "09:00 AM", "10:00 AM"),
	)
	week.Add(lecture(t, "PHY1", "Monday", "11:00 AM", "12:00 PM"))

	snapshot := week.Clone()
	if removed := week.RemoveCourse("CS101"); removed != 2 {
		t.Fatalf("RemoveCourse removed %d entries, want 2", removed)
	}
	if week.Len() != 1 || len(week.Day(Weekday(3))) != 0 {
		t.Fatalf("unexpected week after removal: %+v", week.All())
	}
	if snapshot.Len() != 3 {
		t.Fatalf("clone affected by removal: %d entries", snapshot.Len())
	}
	if removed := week.RemoveCourse("NOPE"); removed != 0 {
		t.Fatalf("removing unknown course removed %d entries", removed)
	}
}
