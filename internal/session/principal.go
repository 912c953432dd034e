package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Principal is the authenticated user as returned by the backend.
// Fields the portal does not interpret are preserved in Profile.
type Principal struct {
	ID      string
	Name    string
	Role    Role
	Email   string
	Profile map[string]any
}

var principalKeys = []string{"id", "name", "role", "email"}

// UnmarshalJSON decodes the backend user object. The id may be a string or a number.
func (p *Principal) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("user object is null")
	}

	var out Principal
	switch id := raw["id"].(type) {
	case string:
		out.ID = strings.TrimSpace(id)
	case json.Number:
		out.ID = id.String()
	}
	if out.ID == "" {
		return fmt.Errorf("user object has no id")
	}
	out.Name, _ = raw["name"].(string)
	out.Email, _ = raw["email"].(string)
	roleValue, _ := raw["role"].(string)
	role, err := ParseRole(roleValue)
	if err != nil {
		return err
	}
	out.Role = role

	for _, key := range principalKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		out.Profile = raw
	}
	*p = out
	return nil
}

// MarshalJSON writes the principal back in the backend's user shape.
func (p Principal) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Profile)+4)
	for key, value := range p.Profile {
		out[key] = value
	}
	out["id"] = p.ID
	out["name"] = p.Name
	out["role"] = p.Role
	if p.Email != "" {
		out["email"] = p.Email
	}
	return json.Marshal(out)
}

// Status is the lifecycle state of a Session.
type Status string

const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
)

// Session is a snapshot of the authentication state. A session is
// authenticated exactly when both Principal and Token are set.
type Session struct {
	Principal     *Principal `json:"principal"`
	Token         string     `json:"-"`
	Status        Status     `json:"status"`
	EstablishedAt time.Time  `json:"establishedAt,omitzero"`
	ExpiresAt     time.Time  `json:"expiresAt,omitzero"`
}

// Authenticated reports whether the session carries both a principal and a token.
func (s Session) Authenticated() bool {
	return s.Principal != nil && s.Token != ""
}

// Role returns the principal's role or the empty role for anonymous sessions.
func (s Session) Role() Role {
	if s.Principal == nil {
		return ""
	}
	return s.Principal.Role
}

func anonymous() Session {
	return Session{Status: StatusAnonymous}
}

// IsAuthorized reports whether the session is authenticated with the given role.
func IsAuthorized(s Session, role Role) bool {
	return s.Authenticated() && s.Principal.Role == role
}
