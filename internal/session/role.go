package session

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the portal a principal belongs to.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
	RoleDoctor  Role = "doctor"
	RoleTA      Role = "ta"
)

// ErrUnknownRole is wrapped by ParseRole for values outside the role set.
var ErrUnknownRole = errors.New("invalid user role")

// ParseRole normalizes a backend role string.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleAdmin, RoleStudent, RoleDoctor, RoleTA:
		return role, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, value)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// HomePath returns the landing path of the role's portal. Teaching
// assistants have no portal of their own.
func HomePath(role Role) (string, bool) {
	switch role {
	case RoleAdmin:
		return "/admin/", true
	case RoleStudent:
		return "/student/", true
	case RoleDoctor:
		return "/doctor/", true
	}
	return "", false
}
