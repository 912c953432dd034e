package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"

	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/ui"
)

const shellHelp = `Commands:
  add CODE [SECTION]     add a course, using the chosen section when none is given
  remove CODE            take a course off the timetable
  select CODE SECTION    choose the section used when the course is added
  courses                list the courses on offer
  show                   print the timetable
  clear                  start over
  commit                 submit the registration
  quit                   leave without submitting`

var errQuit = errors.New("quit")

// shell is the interactive registration loop. It owns its planner.
type shell struct {
	ctx     context.Context
	out     io.Writer
	courses []registration.CourseOffering
	planner *registration.Planner
	commit  func(*shell) error
}

func newShell(ctx context.Context, out io.Writer, courses []registration.CourseOffering, commit func(*shell) error) *shell {
	return &shell{
		ctx:     ctx,
		out:     out,
		courses: courses,
		planner: registration.NewPlanner(),
		commit:  commit,
	}
}

func (sh *shell) run(in io.Reader) error {
	fmt.Fprintln(sh.out, shellHelp)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, "register> ")
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		err := sh.exec(scanner.Text())
		switch {
		case errors.Is(err, errQuit):
			return nil
		case err != nil:
			pterm.Error.Println(describe(err))
		}
		if sh.planner.State() == registration.StateCommitted {
			return nil
		}
	}
}

func (sh *shell) course(code string) (registration.CourseOffering, bool) {
	for _, course := range sh.courses {
		if strings.EqualFold(course.Code, code) {
			return course, true
		}
	}
	return registration.CourseOffering{}, false
}

// exec runs one command line.
func (sh *shell) exec(line string) error {
	args, err := shellquote.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	switch cmd := strings.ToLower(args[0]); cmd {
	case "add":
		if len(args) < 2 || len(args) > 3 {
			return errors.New("usage: add CODE [SECTION]")
		}
		course, ok := sh.course(args[1])
		if !ok {
			return fmt.Errorf("course %s is not on offer", args[1])
		}
		section, _ := sh.planner.SectionChoice(course.Code)
		if len(args) == 3 {
			section = args[2]
		}
		if err := sh.planner.ProposeAddCourse(course, section); err != nil {
			return err
		}
		pterm.Success.Printfln("Added %s", course.Code)
	case "remove":
		if len(args) != 2 {
			return errors.New("usage: remove CODE")
		}
		course, ok := sh.course(args[1])
		if !ok {
			return fmt.Errorf("course %s is not on offer", args[1])
		}
		if err := sh.planner.ProposeRemoveCourse(course.Code); err != nil {
			return err
		}
	case "select":
		if len(args) != 3 {
			return errors.New("usage: select CODE SECTION")
		}
		course, ok := sh.course(args[1])
		if !ok {
			return fmt.Errorf("course %s is not on offer", args[1])
		}
		if _, ok := course.Section(args[2]); !ok {
			return fmt.Errorf("%s has no section %s", course.Code, args[2])
		}
		return sh.planner.SelectSection(course.Code, args[2])
	case "courses":
		ui.PrintCourses(sh.out, sh.courses, sh.planner)
	case "show":
		ui.PrintTimetable(sh.out, sh.planner.Schedule())
	case "clear":
		sh.planner.ClearAll()
	case "commit":
		if sh.commit == nil {
			return errors.New("submitting is not available")
		}
		if err := sh.commit(sh); err != nil {
			return err
		}
		pterm.Success.Println("Registration successful")
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	return nil
}

func describe(err error) string {
	var conflict *registration.ConflictError
	var commitErr *registration.CommitError
	switch {
	case errors.As(err, &conflict):
		return ui.ConflictMessage(conflict)
	case errors.Is(err, registration.ErrSectionRequired):
		return "Choose a section first: select CODE SECTION"
	case errors.Is(err, registration.ErrNothingSelected):
		return "Add at least one course before submitting"
	case errors.Is(err, registration.ErrAlreadyRegistered):
		return "Remove the course first to change its section"
	case errors.As(err, &commitErr):
		return fmt.Sprintf("Registration failed while %s: %v", commitErr.Step, commitErr.Err)
	}
	return err.Error()
}
