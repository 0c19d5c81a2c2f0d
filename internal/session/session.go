// Package session owns the authentication token of the client and its lifecycle.
//
// A Store is created once at the application root and handed to every view.
// On Start it reads the persisted token, validates it against the backend exactly
// once, and from then on exposes the current token, readiness and the Login and
// Logout operations. Nothing else mutates the token.
package session

import (
	"context"
	"errors"
)

// TokenKey is the durable slot key holding the bearer token.
const TokenKey = "token"

// Navigation destinations used by the store.
const (
	HomePath  = "/"
	LoginPath = "/login"
)

var (
	// ErrSlotEmpty is returned by a Slot when the key holds no value.
	ErrSlotEmpty = errors.New("slot is empty")
	// ErrEmptyToken is returned by Login when the token is blank.
	ErrEmptyToken = errors.New("empty token")
)

// Slot is a durable key-value slot surviving process restarts.
type Slot interface {
	// Get returns the value for key or ErrSlotEmpty.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Validator confirms that a token is still accepted by the backend.
// Any error, transport or rejection, means the token is not valid.
type Validator interface {
	ValidateToken(ctx context.Context, token string) error
}

// Navigator moves the user to another view.
type Navigator interface {
	GoTo(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) GoTo(ctx context.Context, path string) {
	f(ctx, path)
}
