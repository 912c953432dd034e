package schedule

import (
	"sort"
)

// EntryKind distinguishes lecture occurrences from section (lab/tutorial) occurrences.
type EntryKind string

const (
	// KindLecture marks a course lecture session.
	KindLecture EntryKind = "lecture"
	// KindSection marks a session of the section chosen for a course.
	KindSection EntryKind = "section"
)

// Entry is one weekly occurrence placed on the timetable.
type Entry struct {
	Kind       EntryKind `json:"kind"`
	CourseCode string    `json:"courseCode"`
	CourseName string    `json:"courseName"`
	SectionID  string    `json:"sectionId,omitempty"`
	Room       string    `json:"room,omitempty"`
	Instructor string    `json:"instructor,omitempty"`
	Interval   Interval  `json:"interval"`
}

func (e Entry) sameSlot(other Entry) bool {
	return e.CourseCode == other.CourseCode && e.Kind == other.Kind && e.Interval == other.Interval
}

// Conflict describes a candidate entry that overlaps an entry already placed,
// or another candidate of the same batch.
type Conflict struct {
	Day       Weekday
	Existing  Entry
	Candidate Entry
}

// DetectConflict returns the first overlap between the candidates and the
// existing entries, then between the candidates themselves. Candidates that
// duplicate an existing slot of the same course and kind are ignored.
func DetectConflict(existing, candidates []Entry) (Conflict, bool) {
	for _, candidate := range candidates {
		for _, placed := range existing {
			if candidate.sameSlot(placed) {
				continue
			}
			if candidate.Interval.Overlaps(placed.Interval) {
				return Conflict{Day: candidate.Interval.Day, Existing: placed, Candidate: candidate}, true
			}
		}
	}
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[i].sameSlot(candidates[j]) {
				continue
			}
			if candidates[i].Interval.Overlaps(candidates[j].Interval) {
				return Conflict{Day: candidates[j].Interval.Day, Existing: candidates[i], Candidate: candidates[j]}, true
			}
		}
	}
	return Conflict{}, false
}

// Week maps each weekday to its entries ordered by start time. The zero value
// is an empty week. No two entries of a Week overlap.
type Week struct {
	days map[Weekday][]Entry
}

// NewWeek returns an empty week.
func NewWeek() Week {
	return Week{}
}

// Add places all entries or none. The returned Conflict is meaningful only
// when ok is false.
func (w *Week) Add(entries ...Entry) (conflict Conflict, ok bool) {
	if c, found := DetectConflict(w.All(), entries); found {
		return c, false
	}
	if w.days == nil {
		w.days = make(map[Weekday][]Entry)
	}
	for _, entry := range entries {
		if w.contains(entry) {
			continue
		}
		day := entry.Interval.Day
		w.days[day] = append(w.days[day], entry)
		sortEntries(w.days[day])
	}
	return Conflict{}, true
}

// RemoveCourse drops every entry of the course and reports how many were removed.
func (w *Week) RemoveCourse(courseCode string) int {
	removed := 0
	for day, entries := range w.days {
		kept := entries[:0]
		for _, entry := range entries {
			if entry.CourseCode == courseCode {
				removed++
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			delete(w.days, day)
			continue
		}
		w.days[day] = kept
	}
	return removed
}

// Clear empties the week.
func (w *Week) Clear() {
	w.days = nil
}

// Day returns a copy of the entries scheduled on the given day.
func (w Week) Day(day Weekday) []Entry {
	entries := w.days[day]
	if len(entries) == 0 {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// All returns every entry in weekday then start-time order.
func (w Week) All() []Entry {
	var out []Entry
	for _, day := range Days {
		out = append(out, w.days[day]...)
	}
	return out
}

// Course returns the entries that belong to the course.
func (w Week) Course(courseCode string) []Entry {
	var out []Entry
	for _, entry := range w.All() {
		if entry.CourseCode == courseCode {
			out = append(out, entry)
		}
	}
	return out
}

// Len reports the number of entries across all days.
func (w Week) Len() int {
	n := 0
	for _, entries := range w.days {
		n += len(entries)
	}
	return n
}

// Clone returns a deep copy of the week.
func (w Week) Clone() Week {
	if len(w.days) == 0 {
		return Week{}
	}
	days := make(map[Weekday][]Entry, len(w.days))
	for day, entries := range w.days {
		days[day] = append([]Entry(nil), entries...)
	}
	return Week{days: days}
}

func (w Week) contains(entry Entry) bool {
	for _, placed := range w.days[entry.Interval.Day] {
		if placed.sameSlot(entry) {
			return true
		}
	}
	return false
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Interval.Start == entries[j].Interval.Start {
			return entries[i].Interval.End < entries[j].Interval.End
		}
		return entries[i].Interval.Start < entries[j].Interval.Start
	})
}
