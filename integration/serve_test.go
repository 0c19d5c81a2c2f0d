//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionStatus struct {
	State         string `json:"state"`
	Ready         bool   `json:"ready"`
	Authenticated bool   `json:"authenticated"`
}

func startServe(t *testing.T, istat *infraStat) {
	t.Helper()

	currdir, err := os.Getwd()
	require.NoError(t, err, "failed to get wd")

	commandCtx, cancelCommand := context.WithTimeout(t.Context(), 30*time.Second)

	cmd := exec.CommandContext(commandCtx, filepath.Join(currdir, binary), "serve", "--graceful-shutdown", "0s")
	cmd.Dir = istat.Procdir

	cmdOutPath := filepath.Join(currdir, strings.ReplaceAll(t.Name(), "/", "_")+".log")
	cmdOut, err := os.Create(cmdOutPath)
	require.NoError(t, err, "failed to create a log file")

	cmd.Stdout = cmdOut
	cmd.Stderr = cmdOut
	t.Logf("starting an app process. Logs will be saved into %s", cmdOutPath)

	require.NoError(t, cmd.Start(), "could not start command")

	// stop gracefully so that coverprofiles are written
	t.Cleanup(func() {
		_ = syscall.Kill(cmd.Process.Pid, syscall.SIGTERM)
		_ = cmd.Wait()
		cancelCommand()
		cmdOut.Close()
	})
}

func waitReady(t *testing.T, client *http.Client) sessionStatus {
	t.Helper()

	var status sessionStatus
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://blog/session")
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return false
		}

		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return false
		}

		return status.Ready
	}, 15*time.Second, 100*time.Millisecond, "session did not become ready")

	return status
}

func TestServe_RestoresValidToken(t *testing.T) {
	istat := initInfra(t)
	istat.WriteToken(t, validToken)

	startServe(t, istat)
	client := istat.Client()

	status := waitReady(t, client)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "authenticated", status.State)

	resp, err := client.Get("http://blog/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Post("http://blog/logout", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, ok := istat.ReadToken(t)
	assert.False(t, ok, "logout must clear the persisted token")
}

func TestServe_DropsRejectedToken(t *testing.T) {
	istat := initInfra(t)
	istat.WriteToken(t, "stale-token")

	startServe(t, istat)
	client := istat.Client()

	status := waitReady(t, client)
	assert.False(t, status.Authenticated)
	assert.Equal(t, "unauthenticated", status.State)

	_, ok := istat.ReadToken(t)
	assert.False(t, ok, "a rejected token must be removed")

	resp, err := client.Get("http://blog/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestServe_Login(t *testing.T) {
	istat := initInfra(t)

	startServe(t, istat)
	client := istat.Client()

	status := waitReady(t, client)
	require.False(t, status.Authenticated)

	resp, err := client.PostForm("http://blog/login", url.Values{
		"email":    {"jane@example.com"},
		"password": {"secret"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	token, ok := istat.ReadToken(t)
	assert.True(t, ok)
	assert.Equal(t, validToken, token)
}
