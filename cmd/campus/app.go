package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/session"
	"github.com/example/campus-portal/internal/ui"
)

var (
	readPasswordFunc = term.ReadPassword

	errNotSignedIn = errors.New("you are not signed in, run 'campus login' first")
	errNotStudent  = errors.New("course registration is only available to students")
)

const envNoColor = "NO_COLOR"

func newApp() *cli.App {
	return &cli.App{
		Name:      "campus",
		Usage:     "Sign in to the college portal and register for courses",
		UsageText: "campus [COMMAND] [OPTIONS]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-color", Usage: "Disable coloured output"},
			&cli.BoolFlag{Name: "dark", Usage: "Use colours suited to dark terminals"},
		},
		Before: func(c *cli.Context) error {
			if _, exists := os.LookupEnv(envNoColor); exists || c.Bool("no-color") {
				ui.DisableStyling()
			}
			ui.DarkTheme = c.Bool("dark")
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with your college id",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Your college id", Required: true},
				},
				Action: loginAction,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the saved session",
				Action: logoutAction,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in user",
				Action: whoamiAction,
			},
			{
				Name:   "courses",
				Usage:  "List the courses you can register for",
				Action: coursesAction,
			},
			{
				Name:   "register",
				Usage:  "Build a timetable interactively and submit it",
				Action: registerAction,
			},
			{
				Name:      "drop",
				Usage:     "Drop a registered course",
				ArgsUsage: "COURSE_CODE",
				Action:    dropAction,
			},
		},
	}
}

func loginAction(c *cli.Context) error {
	e, err := openEnv(c.Context)
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Print("Password: ")
	password, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return err
	}

	current, err := e.sessions.Login(c.Context, c.String("id"), string(password))
	if err != nil {
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			return errors.New(authErr.Message)
		}
		return err
	}

	pterm.Success.Printfln("Signed in as %s (%s)", current.Principal.Name, current.Role())
	if _, ok := session.HomePath(current.Role()); !ok {
		pterm.Warning.Println("Your role has no portal yet")
	}
	return nil
}

func logoutAction(c *cli.Context) error {
	e, err := openEnv(c.Context)
	if err != nil {
		return err
	}
	defer e.Close()

	e.sessions.Logout(c.Context)
	pterm.Success.Println("Signed out")
	return nil
}

func whoamiAction(c *cli.Context) error {
	e, err := openEnv(c.Context)
	if err != nil {
		return err
	}
	defer e.Close()

	current := e.sessions.Current()
	if !current.Authenticated() {
		return errNotSignedIn
	}
	rows := [][]string{
		{"ID", "NAME", "ROLE", "EXPIRES"},
		{current.Principal.ID, current.Principal.Name, string(current.Role()), expiry(current)},
	}
	ui.PrintTable(rows, os.Stdout)
	return nil
}

func expiry(s session.Session) string {
	if s.ExpiresAt.IsZero() {
		return "-"
	}
	return s.ExpiresAt.Local().Format("Jan 02, 2006 03:04 PM")
}

func coursesAction(c *cli.Context) error {
	e, err := openEnv(c.Context)
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := e.student()
	if err != nil {
		return err
	}
	courses, err := e.catalog.Available(c.Context, id)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		pterm.Info.Println("No courses are open for registration")
		return nil
	}
	planner := registration.NewPlanner()
	planner.Preselect(courses)
	ui.PrintCourses(os.Stdout, courses, planner)
	return nil
}

func registerAction(c *cli.Context) error {
	e, err := openEnv(c.Context)
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := e.student()
	if err != nil {
		return err
	}
	courses, err := e.catalog.Available(c.Context, id)
	if err != nil {
		return err
	}

	sh := newShell(c.Context, os.Stdout, courses, func(sh *shell) error {
		_, err := e.registrar.Commit(c.Context, id, sh.planner)
		return err
	})
	sh.planner.Preselect(courses)
	return sh.run(os.Stdin)
}

func dropAction(c *cli.Context) error {
	code := strings.TrimSpace(c.Args().First())
	if code == "" {
		return errors.New("a course code is required")
	}

	e, err := openEnv(c.Context)
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := e.student()
	if err != nil {
		return err
	}
	if err := e.registrar.Drop(c.Context, id, code); err != nil {
		return err
	}
	pterm.Success.Printfln("Dropped %s", code)
	return nil
}
