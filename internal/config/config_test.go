package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFile(t *testing.T) {
	path := writeEnv(t, `
GOPAD_PORT=9000
GOPAD_MONGO_URI=mongodb://localhost:27017
GOPAD_LOG_LEVEL=debug
GOPAD_SNAPSHOT_INTERVAL=5s
GOPAD_HISTORY_LIMIT=10
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, c.Port)
	assert.Equal(t, "mongodb://localhost:27017", c.MongoURI)
	assert.Equal(t, "gopad", c.MongoDB)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
	assert.Equal(t, 5*time.Second, c.SnapshotInterval)
	assert.Equal(t, 10, c.HistoryLimit)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeEnv(t, "GOPAD_PORT=9000\nGOPAD_ADDR=0.0.0.0\n")
	t.Setenv("GOPAD_PORT", "9100")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, c.Port)
	assert.Equal(t, "0.0.0.0", c.Addr)
}

func TestLoadInvalid(t *testing.T) {
	for _, body := range []string{
		"GOPAD_PORT=eighty",
		"GOPAD_SNAPSHOT_INTERVAL=soon",
		"GOPAD_SNAPSHOT_INTERVAL=0s",
		"GOPAD_HISTORY_LIMIT=0",
	} {
		_, err := Load(writeEnv(t, body))
		assert.Error(t, err, body)
	}
}
