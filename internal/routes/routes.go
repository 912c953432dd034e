// Package routes decides which portal paths a session may open.
package routes

import (
	"strings"

	"github.com/example/campus-portal/internal/session"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// Decision is the outcome of resolving a path for a session.
type Decision struct {
	Allow    bool
	Redirect string
}

var guarded = []struct {
	prefix string
	role   session.Role
}{
	{prefix: "/admin", role: session.RoleAdmin},
	{prefix: "/student", role: session.RoleStudent},
	{prefix: "/doctor", role: session.RoleDoctor},
}

// RequiredRole returns the role a path is reserved for.
func RequiredRole(path string) (session.Role, bool) {
	for _, g := range guarded {
		if path == g.prefix || strings.HasPrefix(path, g.prefix+"/") {
			return g.role, true
		}
	}
	return "", false
}

// Resolve applies the portal's routing rules.
func Resolve(s session.Session, path string) Decision {
	if path == "" {
		path = "/"
	}
	home, hasHome := session.HomePath(s.Role())

	if role, ok := RequiredRole(path); ok {
		if !s.Authenticated() {
			return Decision{Redirect: LoginPath}
		}
		if session.IsAuthorized(s, role) {
			return Decision{Allow: true}
		}
		if hasHome {
			return Decision{Redirect: home}
		}
		return Decision{Redirect: LoginPath}
	}

	if s.Authenticated() && hasHome && (path == "/" || path == LoginPath) {
		return Decision{Redirect: home}
	}
	return Decision{Allow: true}
}
