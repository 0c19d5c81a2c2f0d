//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openkcm/blog-client/internal/session"
	sessionfile "github.com/openkcm/blog-client/internal/session/file"
)

const validToken = "good-token"

// infraStat is the working directory of one binary run: its config file,
// token file, socket and the fake blog backend it talks to.
type infraStat struct {
	Procdir   string
	TokenPath string
	Socket    string
	Backend   *httptest.Server
}

func initInfra(t *testing.T) *infraStat {
	t.Helper()

	procdir := t.TempDir()

	istat := &infraStat{
		Procdir:   procdir,
		TokenPath: filepath.Join(procdir, "state", "session.yaml"),
		Socket:    filepath.Join(procdir, "blog.sock"),
		Backend:   httptest.NewServer(fakeBackend()),
	}
	t.Cleanup(istat.Backend.Close)

	config := fmt.Sprintf(`http:
  address: unix://%s
  shutdownTimeout: 1s
backend:
  baseURL: %s
  timeout: 2s
tokenStore:
  type: file
  file:
    path: %s
`, istat.Socket, istat.Backend.URL, istat.TokenPath)

	err := os.WriteFile(filepath.Join(procdir, "config.yaml"), []byte(config), 0o600)
	require.NoError(t, err, "failed to write config")

	return istat
}

// fakeBackend accepts validToken only.
func fakeBackend() http.Handler {
	mux := http.NewServeMux()

	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+validToken
	}

	mux.HandleFunc("GET /auth/validate-token", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid token"}`))
			return
		}

		_, _ = w.Write([]byte(`{"valid":true}`))
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"token": validToken})
	})
	mux.HandleFunc("GET /auth/user", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Jane"}`))
	})
	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		_, _ = w.Write([]byte(`[{"_id":"p1","Title":"Hello","PostDate":"2024-03-01T00:00:00Z","Tags":"[\"go\"]"}]`))
	})

	return mux
}

// WriteToken persists token into the file token store of the run.
func (istat *infraStat) WriteToken(t *testing.T, token string) {
	t.Helper()

	err := sessionfile.NewSlot(istat.TokenPath).Set(t.Context(), session.TokenKey, token)
	require.NoError(t, err, "failed to persist token")
}

// ReadToken returns the persisted token, if any.
func (istat *infraStat) ReadToken(t *testing.T) (string, bool) {
	t.Helper()

	token, err := sessionfile.NewSlot(istat.TokenPath).Get(t.Context(), session.TokenKey)
	if errors.Is(err, session.ErrSlotEmpty) {
		return "", false
	}
	require.NoError(t, err, "failed to read token")

	return token, true
}

// Client talks to the views over the unix socket without following redirects.
func (istat *infraStat) Client() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return new(net.Dialer).DialContext(ctx, "unix", istat.Socket)
			},
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
