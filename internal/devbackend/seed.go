package devbackend

import (
	"github.com/example/campus-portal/internal/backend"
)

// User is an account known to the dev backend.
type User struct {
	ID       string
	Name     string
	Role     string
	Email    string
	Password string
}

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// SeedUsers returns one account per role.
func SeedUsers() []User {
	return []User{
		{ID: "20230001", Name: "Mona Adel", Role: "student", Email: "mona@campus.test", Password: DefaultPassword},
		{ID: "20230002", Name: "Karim Lotfy", Role: "student", Email: "karim@campus.test", Password: DefaultPassword},
		{ID: "A-1", Name: "Registrar Office", Role: "admin", Password: DefaultPassword},
		{ID: "D-7", Name: "Dr. Samir Fathy", Role: "doctor", Password: DefaultPassword},
		{ID: "T-3", Name: "Omar Nabil", Role: "ta", Password: DefaultPassword},
	}
}

func meeting(day, start, end, room string) backend.MeetingDTO {
	return backend.MeetingDTO{Day: day, StartTime: start, EndTime: end, Room: room}
}

// SeedCourses returns the offerings every student may register for.
func SeedCourses() []backend.CourseDTO {
	return []backend.CourseDTO{
		{
			Code: "CS101", Name: "Introduction to Programming", CreditHours: 3, Instructor: "Dr. Samir Fathy",
			LectureSessions: []backend.MeetingDTO{meeting("Monday", "09:00 AM", "10:30 AM", "Hall A")},
			Sections: []backend.SectionDTO{
				{SectionID: "S1", TeachingAssistant: "Omar Nabil", Capacity: 2, Sessions: []backend.MeetingDTO{meeting("Tuesday", "10:00 AM", "11:00 AM", "Lab 1")}},
				{SectionID: "S2", TeachingAssistant: "Omar Nabil", Capacity: 30, Sessions: []backend.MeetingDTO{meeting("Wednesday", "12:00 PM", "01:00 PM", "Lab 2")}},
			},
		},
		{
			Code: "MATH201", Name: "Linear Algebra", CreditHours: 3, Instructor: "Dr. Hala Youssef",
			LectureSessions: []backend.MeetingDTO{meeting("Monday", "10:00 AM", "11:30 AM", "Hall B")},
			Sections: []backend.SectionDTO{
				{SectionID: "M1", Capacity: 25, Sessions: []backend.MeetingDTO{meeting("Tuesday", "10:30 AM", "11:30 AM", "Room 12")}},
				{SectionID: "M2", Capacity: 25, Sessions: []backend.MeetingDTO{meeting("Thursday", "08:00 AM", "09:00 AM", "Room 12")}},
			},
		},
		{
			Code: "HIST110", Name: "Modern History", CreditHours: 2,
			LectureSessions: []backend.MeetingDTO{
				meeting("Monday", "10:30 AM", "12:00 PM", "Hall C"),
				meeting("Thursday", "02:00 PM", "03:30 PM", "Hall C"),
			},
		},
		{
			Code: "PHYS150", Name: "Physics for Engineers", CreditHours: 4, Instructor: "Dr. Nadia Salem",
			LectureSessions: []backend.MeetingDTO{meeting("Sunday", "11:00 AM", "12:30 PM", "Hall A")},
			Sections: []backend.SectionDTO{
				{SectionID: "P1", Capacity: 20, Sessions: []backend.MeetingDTO{meeting("Sunday", "12:00 AM", "01:00 AM", "Online")}},
			},
		},
	}
}
