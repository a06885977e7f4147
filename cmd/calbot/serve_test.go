package main

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCredentials = `{"installed":{
	"client_id":"calbot.apps.googleusercontent.com",
	"client_secret":"secret",
	"redirect_uris":["urn:ietf:wg:oauth:2.0:oob"],
	"auth_uri":"https://accounts.google.com/o/oauth2/auth",
	"token_uri":"https://oauth2.googleapis.com/token"
}}`

func serveArgs(t *testing.T, extra ...string) []string {
	t.Helper()

	dir := t.TempDir()
	cred := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(cred, []byte(testCredentials), 0o600))

	return append([]string{
		"serve",
		"--gateway", "console",
		"--timezone", "UTC",
		"--db", filepath.Join(dir, "calbot.db"),
		"--google-cred", cred,
	}, extra...)
}

func TestServeCommand_Console(t *testing.T) {
	t.Setenv("CALBOT_DISPATCHER_RATE", "0.001")
	t.Setenv("CALBOT_DISPATCHER_BURST", "1")

	out, err := runWithInput(t, strings.NewReader("hola\nhola otra vez\n"), serveArgs(t, "--metrics-addr", "")...)
	require.NoError(t, err, "serve must return at end of input")

	assert.Contains(t, out, "You must first authorize me!")
	assert.Contains(t, out, "state=calbot-1")
	assert.Contains(t, out, replyBusy)
}

func TestServeCommand_MetricsListenerFails(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	in, w := io.Pipe()
	defer w.Close()

	args := serveArgs(t, "--metrics-addr", l.Addr().String())
	done := make(chan error, 1)
	go func() {
		_, err := runWithInput(t, in, args...)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "metrics server")
	case <-time.After(5 * time.Second):
		t.Fatal("serve still running after the metrics listener failed")
	}
}
