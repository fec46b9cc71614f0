package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gaiaharvest/internal/collector"
	"gaiaharvest/internal/vocab"
	"gaiaharvest/pkg/sqliteutil"

	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	t.Setenv("BGA_USERNAME", "")
	t.Setenv("BGA_PASSWORD", "")

	t.Run("missing file", func(t *testing.T) {
		config, err := readConfig(filepath.Join(t.TempDir(), "config.json5"), false)
		require.NoError(t, err)
		require.Equal(t, defaultConfig(), config)
	})

	t.Run("defaults fill the gaps", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json5")
		err := os.WriteFile(path, []byte(`{
			// comments are allowed
			username: "alice",
			delay_ms: 10000,
			max_consecutive_match_failures: 0,
		}`), 0600)
		require.NoError(t, err)

		config, err := readConfig(path, false)
		require.NoError(t, err)
		require.Equal(t, "alice", config.Username)
		require.Equal(t, 10*time.Second, config.delay())
		require.Equal(t, collector.DefaultSecondary, config.secondaryDelay())
		require.Equal(t, int64(vocab.GaiaProjectGameID), config.GameID)
		require.Equal(t, sqliteutil.DriverSqlite, config.Database.Driver)
		require.NotNil(t, config.MaxConsecutiveMatchFailures)
		require.Equal(t, 0, *config.MaxConsecutiveMatchFailures)
	})

	t.Run("zero delays are kept", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json5")
		require.NoError(t, os.WriteFile(path, []byte(`{ delay_ms: 0, secondary_delay_ms: 0 }`), 0600))

		config, err := readConfig(path, false)
		require.NoError(t, err)
		require.Equal(t, time.Duration(0), config.delay())
		require.Equal(t, time.Duration(0), config.secondaryDelay())
	})

	t.Run("environment credentials", func(t *testing.T) {
		t.Setenv("BGA_USERNAME", "bob")
		t.Setenv("BGA_PASSWORD", "secret")

		config, err := readConfig(filepath.Join(t.TempDir(), "config.json5"), false)
		require.NoError(t, err)
		require.Equal(t, "bob", config.Username)
		require.Equal(t, "secret", config.Password)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json5")
		require.NoError(t, os.WriteFile(path, []byte(`{ username: `), 0600))

		_, err := readConfig(path, false)
		require.Error(t, err)
	})
}
