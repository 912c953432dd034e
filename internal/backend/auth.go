package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/example/campus-portal/internal/session"
)

var (
	_ session.AuthAPI   = (*Client)(nil)
	_ session.Rejection = (*APIError)(nil)
)

type loginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Login exchanges credentials for a token and the user object.
func (c *Client) Login(ctx context.Context, id, password string) (session.Grant, error) {
	var resp loginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   loginRequest{ID: id, Password: password},
	}, &resp)
	if err != nil {
		return session.Grant{}, err
	}
	return session.Grant{Token: resp.Token, User: resp.User}, nil
}

// Logout tells the backend the token is no longer in use.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/auth/logout",
		bearer: token,
	}, nil)
}
