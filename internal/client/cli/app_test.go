package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gophlink/internal/client/config"
	"github.com/dmitrijs2005/gophlink/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLoggedIn(t *testing.T) {
	assert.False(t, (&App{}).isLoggedIn())

	ta := newTestApp()
	assert.False(t, ta.isLoggedIn())
	ta.signIn("Alice", "alice@example.com")
	assert.True(t, ta.isLoggedIn())
}

func TestGetStatus(t *testing.T) {
	ta := newTestApp()
	assert.Equal(t, "", ta.getStatus())

	ta.signIn("Alice", "alice@example.com")
	assert.Equal(t, " (Alice)", ta.getStatus())

	ta.signIn("", "alice@example.com")
	assert.Equal(t, " (alice@example.com)", ta.getStatus(), "falls back to the email")
}

func TestClose_UnloadsSessions(t *testing.T) {
	ta := newTestApp()
	require.NoError(t, ta.Close(context.Background()))
	assert.Equal(t, 1, ta.sessions.unloads)

	ta.sessions.unloadErr = errors.New("disk full")
	require.ErrorContains(t, ta.Close(context.Background()), "unload session")
}

func TestNewApp_WiresWithoutServer(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerURL = "http://127.0.0.1:1"
	cfg.StateDSN = filepath.Join(t.TempDir(), "state", "gophlink.db")

	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err, "an unreachable server is not fatal")
	assert.False(t, app.isLoggedIn())
	assert.FileExists(t, cfg.StateDSN)

	require.NoError(t, app.Close(context.Background()))
}

func TestNewApp_BadStatePath(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StateDSN = dir // a directory is not a database

	_, err := NewApp(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
}
