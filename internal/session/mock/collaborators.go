package sessionmock

import (
	"context"
	"sync"

	"github.com/openkcm/blog-client/internal/session"
)

// Validator returns a fixed result and counts its calls. If a release channel is
// set, ValidateToken blocks until it is closed.
type Validator struct {
	mu      sync.Mutex
	err     error
	release chan struct{}
	tokens  []string
}

var _ = session.Validator(&Validator{})

func NewValidator(err error) *Validator {
	return &Validator{err: err}
}

// NewBlockingValidator returns a validator that blocks until the returned
// function is called.
func NewBlockingValidator(err error) (*Validator, func()) {
	v := &Validator{err: err, release: make(chan struct{})}
	var once sync.Once
	return v, func() { once.Do(func() { close(v.release) }) }
}

func (v *Validator) ValidateToken(ctx context.Context, token string) error {
	v.mu.Lock()
	v.tokens = append(v.tokens, token)
	release := v.release
	v.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return v.err
}

// Tokens returns the tokens passed to ValidateToken in call order.
func (v *Validator) Tokens() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return append([]string(nil), v.tokens...)
}

// Navigator records every requested path.
type Navigator struct {
	mu    sync.Mutex
	paths []string
}

var _ = session.Navigator(&Navigator{})

func (n *Navigator) GoTo(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.paths = append(n.paths, path)
}

func (n *Navigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string(nil), n.paths...)
}
