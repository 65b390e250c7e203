package injector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAppFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warehouse.yaml")
	doc := "server:\n  websocket_addr: \"127.0.0.1:0\"\n  log_level: error\n" +
		"persistence:\n  sqlite_path: " + filepath.Join(dir, "ledger.db") + "\n  journal_dir: " + filepath.Join(dir, "journal") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	app, err := InitializeApp(ConfigPath(path))
	require.NoError(t, err)
	require.NotNil(t, app.Server)
	assert.Equal(t, "127.0.0.1:0", app.Config.Server.WebSocketAddr)

	_, ok := app.Session.Lookup("rack-a")
	assert.True(t, ok)
	require.NoError(t, app.Session.Close(context.Background()))
	assert.FileExists(t, filepath.Join(dir, "ledger.db"))
}

func TestInitializeAppRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tuning:\n  fade: later\n"), 0o644))
	_, err := InitializeApp(ConfigPath(path))
	assert.Error(t, err)
}
