package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("PRIMARY_DB_PASSWORD", "s3cret")

	cfg, err := Load("testdata/config.toml")
	require.NoError(t, err)

	require.Equal(t, "en_US", cfg.Locale)
	require.Equal(t, uint8(2), cfg.MaxWorkers)
	require.Equal(t, "num", cfg.Fetch.DefaultMode)
	require.Equal(t, time.Minute, cfg.Cache.MaxAge)
	require.Len(t, cfg.Connections, 2)

	primary := cfg.GetConnection("primary")
	require.NotNil(t, primary)
	require.Equal(t, "mysql", primary.Engine)
	require.Equal(t, "s3cret", primary.Password)

	// Blank environment fields fall back to connection-level values.
	replica := primary.Environment["replica"]
	require.NotNil(t, replica)
	require.Equal(t, "replica.db.internal", replica.Host)
	require.Equal(t, uint16(3306), replica.Port)
	require.Equal(t, "app", replica.Database)
	require.Equal(t, "s3cret", replica.Password)

	// Environments without a host are disabled, not half-configured.
	staging := primary.Environment["staging"]
	require.NotNil(t, staging)
	require.True(t, staging.Disabled)

	reports := cfg.GetConnection("reports")
	require.Equal(t, "plain", reports.Password)
	require.Equal(t, uint16(5433), reports.Environment["replica"].Port)
}

func TestLoadRejectsBadConsoleOutput(t *testing.T) {
	_, err := Load("testdata/bad_logger.toml")
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/nope.toml")
	require.Error(t, err)
}
