package testfixtures

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/schedule"
	"github.com/example/campus-portal/internal/session"
)

var referenceTime = time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Principal fixtures -----------------------------

// Student returns the default student principal.
func Student() session.Principal {
	return session.Principal{ID: "20230001", Name: "Mona Adel", Role: session.RoleStudent, Email: "mona@campus.test"}
}

// Admin returns the default administrator principal.
func Admin() session.Principal {
	return session.Principal{ID: "A-1", Name: "Registrar Office", Role: session.RoleAdmin}
}

// Doctor returns the default lecturer principal.
func Doctor() session.Principal {
	return session.Principal{ID: "D-7", Name: "Dr. Samir Fathy", Role: session.RoleDoctor}
}

// TeachingAssistant returns a principal whose role has no portal.
func TeachingAssistant() session.Principal {
	return session.Principal{ID: "T-3", Name: "Omar Nabil", Role: session.RoleTA}
}

// Token returns an HS256 token for subject that expires
// at exp. A zero exp omits the claim.
func Token(subject string, exp time.Time) string {
	claims := jwt.MapClaims{"sub": subject}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("fixture-secret"))
	if err != nil {
		panic(fmt.Sprintf("testfixtures: sign token: %v", err))
	}
	return signed
}

// Grant builds a login grant for p with a token expiring a day after ReferenceTime.
func Grant(p session.Principal) session.Grant {
	user, err := json.Marshal(p)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: marshal principal: %v", err))
	}
	return session.Grant{Token: Token(p.ID, referenceTime.Add(24*time.Hour)), User: user}
}

// Signed returns an authenticated session for p.
func Signed(p session.Principal) session.Session {
	return session.Session{
		Principal:     &p,
		Token:         Token(p.ID, referenceTime.Add(24*time.Hour)),
		Status:        session.StatusAuthenticated,
		EstablishedAt: referenceTime,
		ExpiresAt:     referenceTime.Add(24 * time.Hour),
	}
}

// ----------------------------- Catalog fixtures -----------------------------

// Interval parses a weekly interval and panics on malformed input.
func Interval(day, start, end string) schedule.Interval {
	interval, err := schedule.ParseInterval(day, start, end)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: %v", err))
	}
	return interval
}

// Meeting builds a meeting in room.
func Meeting(day, start, end, room string) registration.Meeting {
	return registration.Meeting{Interval: Interval(day, start, end), Room: room}
}

// CS101 has Monday lectures and two sections.
func CS101() registration.CourseOffering {
	return registration.CourseOffering{
		Code:        "CS101",
		Name:        "Introduction to Programming",
		CreditHours: 3,
		Instructor:  "Dr. Samir Fathy",
		Lectures:    []registration.Meeting{Meeting("Monday", "09:00 AM", "10:30 AM", "Hall A")},
		Sections: []registration.SectionOffering{
			{SectionID: "S1", TeachingAssistant: "Omar Nabil", Capacity: 30, Sessions: []registration.Meeting{Meeting("Tuesday", "10:00 AM", "11:00 AM", "Lab 1")}},
			{SectionID: "S2", TeachingAssistant: "Omar Nabil", Capacity: 30, Sessions: []registration.Meeting{Meeting("Wednesday", "12:00 PM", "01:00 PM", "Lab 2")}},
		},
	}
}

// MATH201 overlaps CS101's Monday lecture.
func MATH201() registration.CourseOffering {
	return registration.CourseOffering{
		Code:        "MATH201",
		Name:        "Linear Algebra",
		CreditHours: 3,
		Instructor:  "Dr. Hala Youssef",
		Lectures:    []registration.Meeting{Meeting("Monday", "10:00 AM", "11:30 AM", "Hall B")},
		Sections: []registration.SectionOffering{
			{SectionID: "M1", Sessions: []registration.Meeting{Meeting("Tuesday", "10:30 AM", "11:30 AM", "Room 12")}},
		},
	}
}

// HIST110 has lectures only and starts when CS101's lecture ends.
func HIST110() registration.CourseOffering {
	return registration.CourseOffering{
		Code:        "HIST110",
		Name:        "Modern History",
		CreditHours: 2,
		Lectures: []registration.Meeting{
			Meeting("Monday", "10:30 AM", "12:00 PM", "Hall C"),
			Meeting("Thursday", "02:00 PM", "03:30 PM", "Hall C"),
		},
	}
}

// Courses returns the fixture catalog.
func Courses() []registration.CourseOffering {
	return []registration.CourseOffering{CS101(), MATH201(), HIST110()}
}
