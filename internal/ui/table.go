package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/schedule"
)

func PrintTable(data [][]string, writer io.Writer) {
	table := pterm.DefaultTable
	table.Boxed = true

	str, err := table.WithHasHeader().WithData(data).Srender()
	if err != nil {
		pterm.Error.Printfln("Failed to output table: %s", err.Error())
		return
	}

	fmt.Fprintln(writer, str)
}

func meetings(list []registration.Meeting) string {
	parts := make([]string, 0, len(list))
	for _, m := range list {
		parts = append(parts, m.Interval.String())
	}
	return strings.Join(parts, "\n")
}

// PrintCourses lists the offerings with their sections. Registered courses
// are marked, and the tentative section choice is highlighted.
func PrintCourses(w io.Writer, courses []registration.CourseOffering, planner *registration.Planner) {
	body := [][]string{{"CODE", "NAME", "HOURS", "LECTURES", "SECTIONS", "STATUS"}}

	for _, course := range courses {
		choice, _ := planner.SectionChoice(course.Code)

		sections := make([]string, 0, len(course.Sections))
		for _, section := range course.Sections {
			label := section.SectionID + " " + meetings(section.Sessions)
			if section.SectionID == choice {
				label = Cyan("* " + label)
			}
			sections = append(sections, label)
		}

		status := ""
		if planner.IsRegistered(course.Code) {
			status = Green("added")
		}

		body = append(body, []string{
			course.Code,
			course.Name,
			strconv.Itoa(course.CreditHours),
			meetings(course.Lectures),
			strings.Join(sections, "\n"),
			status,
		})
	}

	PrintTable(body, w)
}

// PrintTimetable prints the week one row per entry, grouped by day.
func PrintTimetable(w io.Writer, week schedule.Week) {
	if week.Len() == 0 {
		pterm.Info.Println("Your timetable is empty")
		return
	}

	body := [][]string{{"DAY", "TIME", "COURSE", "KIND", "ROOM"}}

	for _, day := range schedule.Days {
		for _, entry := range week.Day(day) {
			kind := string(entry.Kind)
			if entry.SectionID != "" {
				kind += " " + entry.SectionID
			}
			body = append(body, []string{
				day.Short(),
				entry.Interval.Start.String() + " - " + entry.Interval.End.String(),
				entry.CourseCode + " " + entry.CourseName,
				kind,
				entry.Room,
			})
		}
	}

	PrintTable(body, w)
}

// ConflictMessage describes a rejected add in one sentence.
func ConflictMessage(err *registration.ConflictError) string {
	return fmt.Sprintf("%s clashes with %s on %s (%s - %s)",
		err.Candidate.CourseCode,
		err.Existing.CourseCode,
		err.Day,
		err.Existing.Interval.Start,
		err.Existing.Interval.End,
	)
}
