package postgres

import (
	"testing"
	"time"

	"multichain-settlement/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDatabaseConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:             "db.internal",
		Port:             5433,
		User:             "settle",
		Password:         "secret",
		DBName:           "settlement",
		SSLMode:          "disable",
		MaxConns:         20,
		MinConns:         5,
		ConnMaxLifetime:  30 * time.Minute,
		StatementTimeout: 5 * time.Second,
	}
}

func TestPoolConfig(t *testing.T) {
	poolCfg, err := poolConfig(testDatabaseConfig())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", poolCfg.ConnConfig.Host)
	assert.Equal(t, uint16(5433), poolCfg.ConnConfig.Port)
	assert.Equal(t, "settlement", poolCfg.ConnConfig.Database)
	assert.Equal(t, int32(20), poolCfg.MaxConns)
	assert.Equal(t, int32(5), poolCfg.MinConns)
	assert.Equal(t, 30*time.Minute, poolCfg.MaxConnLifetime)
	assert.Equal(t, "multichain-settlement", poolCfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "5000", poolCfg.ConnConfig.RuntimeParams["statement_timeout"])
}

func TestPoolConfig_ServerDefaults(t *testing.T) {
	cfg := testDatabaseConfig()
	cfg.StatementTimeout = 0
	cfg.ConnMaxLifetime = 0

	poolCfg, err := poolConfig(cfg)
	require.NoError(t, err)

	_, set := poolCfg.ConnConfig.RuntimeParams["statement_timeout"]
	assert.False(t, set)
	assert.Equal(t, time.Hour, poolCfg.MaxConnLifetime, "pgxpool default")
}

func TestPoolConfig_BadPort(t *testing.T) {
	cfg := testDatabaseConfig()
	cfg.Port = -1

	_, err := poolConfig(cfg)
	assert.ErrorContains(t, err, "parsing database config")
}
