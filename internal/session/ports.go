package session

import (
	"context"
	"encoding/json"
)

// Grant is a successful login response: the bearer token and the raw user object.
type Grant struct {
	Token string
	User  json.RawMessage
}

// AuthAPI is the slice of the backend the manager talks to.
type AuthAPI interface {
	Login(ctx context.Context, id, password string) (Grant, error)
	// Logout notifies the backend that the token is no longer used.
	Logout(ctx context.Context, token string) error
}

// Store is a scoped key-value store for the persisted session.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Storage keys for the persisted session.
const (
	TokenKey = "AuthToken"
	UserKey  = "user"
)
