package config_test

import (
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	s, err := config.LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "gorm", s.RecordStore)
	assert.Equal(t, "sqlite", s.DBDriver)
	assert.Equal(t, "storefront.db", s.DatabaseDSN)
	assert.Equal(t, "if-match", s.WriteMode)
	assert.Equal(t, 24*time.Hour, s.ReconcileInterval)
	assert.Equal(t, time.Minute, s.CacheTTL)
	assert.Equal(t, "logs", s.AuditLogDir)
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("WRITE_MODE", "Unconditional")
	t.Setenv("RECONCILE_INTERVAL", "90m")

	s, err := config.LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "postgres", s.DBDriver)
	assert.Contains(t, s.DatabaseDSN, "dbname=storefront")
	assert.Equal(t, "unconditional", s.WriteMode)
	assert.Equal(t, 90*time.Minute, s.ReconcileInterval)
}

func TestLoadSettingsRejectsUnknownStore(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("RECORD_STORE", "cassandra")

	_, err := config.LoadSettings()
	assert.ErrorContains(t, err, "RECORD_STORE")
}

func TestUnknownDriverFallsBackToSQLite(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("DB_DRIVER", "oracle")

	assert.Equal(t, "sqlite", config.DatabaseDriver())
}
