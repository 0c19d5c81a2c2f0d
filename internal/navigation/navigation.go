// Package navigation turns navigation requests of the session store into
// HTTP redirects on the response of the request that caused them.
package navigation

import (
	"context"
	"net/http"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/blog-client/internal/session"
)

// Using an unexported type prevents key collisions from other packages.
type contextKey string

const bindingKey contextKey = "navigation-binding"

type binding struct {
	mu        sync.Mutex
	w         http.ResponseWriter
	r         *http.Request
	location  string
	navigated bool
}

// Middleware binds the response of the current request to its context so
// that a later GoTo on the same context redirects this response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := &binding{w: w, r: r}
		ctx := context.WithValue(r.Context(), bindingKey, b)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Navigated reports whether a redirect has already been written for the
// request bound to ctx.
func Navigated(ctx context.Context) bool {
	b, ok := ctx.Value(bindingKey).(*binding)
	if !ok {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.navigated
}

// Location returns the redirect target written for the request bound to ctx.
func Location(ctx context.Context) (string, bool) {
	b, ok := ctx.Value(bindingKey).(*binding)
	if !ok {
		return "", false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.location, b.navigated
}

// Navigator implements session.Navigator. Without a bound request it keeps
// the last requested location so it can be reported later.
type Navigator struct {
	mu   sync.Mutex
	last string
}

var _ = session.Navigator(&Navigator{})

func NewNavigator() *Navigator {
	return &Navigator{}
}

func (n *Navigator) GoTo(ctx context.Context, path string) {
	n.mu.Lock()
	n.last = path
	n.mu.Unlock()

	b, ok := ctx.Value(bindingKey).(*binding)
	if !ok {
		slogctx.Info(ctx, "Navigation requested without a bound request", "location", path)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.navigated {
		slogctx.Warn(ctx, "Response already redirected, ignoring navigation", "location", path, "previous", b.location)
		return
	}

	b.navigated = true
	b.location = path

	// 303 so that the follow-up request is a GET and replaces the form submission.
	http.Redirect(b.w, b.r, path, http.StatusSeeOther)
}

// Last returns the most recent location passed to GoTo.
func (n *Navigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.last
}
