package meta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rainet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.True(t, cfg.ListenTCP())
	require.True(t, cfg.ListenUnix())
	require.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoadConfig(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, "mode: tcp\ntcp: 127.0.0.1:9000\nlog_level: debug\nrecords_dir: /tmp/records\n"))
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:9000", cfg.TCPAddr)
		require.Equal(t, DEFAULT_UNIX_PATH, cfg.UnixPath)
		require.True(t, cfg.ListenTCP())
		require.False(t, cfg.ListenUnix())
		require.Equal(t, zerolog.DebugLevel, cfg.Level())
		require.Equal(t, "/tmp/records", cfg.RecordsDir)
		require.Equal(t, MAX_ROOMS, cfg.MaxRooms)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "mode: [tcp\n"))
		require.Error(t, err)
	})

	for name, body := range map[string]string{
		"unknown mode":       "mode: carrier-pigeon\n",
		"tcp without addr":   "mode: tcp\ntcp: \"\"\n",
		"unix without path":  "mode: unix\nunix: \"\"\n",
		"nothing to listen":  "mode: none\n",
		"bad level":          "log_level: loud\n",
		"non positive rooms": "max_rooms: 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			require.Error(t, err)
		})
	}

	t.Run("websocket only", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, "mode: none\nws: 127.0.0.1:8080\n"))
		require.NoError(t, err)
		require.False(t, cfg.ListenTCP())
		require.False(t, cfg.ListenUnix())
	})
}
