// Package guard gates views behind the session store: nothing protected is
// rendered until the initial validation has resolved, and anonymous requests
// are sent to the login view.
package guard

import (
	"net/http"

	slogctx "github.com/veqryn/slog-context"
)

// Decision is the outcome of Decide.
type Decision int

const (
	// Loading means the session is not ready yet. Render a placeholder only.
	Loading Decision = iota
	// Render means the requested view may be rendered.
	Render
	// Redirect means the request must go to the login view.
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Session is the read side of the session store the guard depends on.
type Session interface {
	Ready() bool
	Token() (string, bool)
}

// Decide is a pure function of readiness and the current token.
func Decide(ready bool, token string, hasToken bool) Decision {
	if !ready {
		return Loading
	}

	if hasToken && token != "" {
		return Render
	}

	return Redirect
}

// RetryAfterSeconds is sent with the loading placeholder.
const RetryAfterSeconds = "1"

// Middleware applies Decide to every request. Requests for loginPath are
// never redirected.
func Middleware(sess Session, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := sess.Token()
			decision := Decide(sess.Ready(), token, ok)

			switch decision {
			case Loading:
				writeLoading(w, r)
			case Redirect:
				if r.URL.Path == loginPath {
					next.ServeHTTP(w, r)
					return
				}

				slogctx.Debug(r.Context(), "Redirecting anonymous request", "path", r.URL.Path, "to", loginPath)
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// ReadyMiddleware only holds requests back until the session is ready. It is
// used for public views, which must not render while validation is pending
// either.
func ReadyMiddleware(sess Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sess.Ready() {
				writeLoading(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeLoading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", RetryAfterSeconds)
	w.WriteHeader(http.StatusServiceUnavailable)

	if _, err := w.Write([]byte(`{"status":"loading"}`)); err != nil {
		slogctx.Error(r.Context(), "Failed to write loading placeholder", "error", err)
	}
}
