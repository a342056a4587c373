package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("MIN_BET", "")
	t.Setenv("MAX_BET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, int64(200), cfg.MinBet)
	assert.Equal(t, int64(10000), cfg.MaxBet)
	assert.Equal(t, int64(7000), cfg.MinWithdrawal)
	assert.Equal(t, int64(10000), cfg.BiasCeiling)
	assert.Equal(t, int64(1000), cfg.BiasFloor)
	assert.Equal(t, 30*time.Minute, cfg.MineRoundTTL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_PORT", "")
	t.Setenv("MIN_BET", "500")
	t.Setenv("MINE_ROUND_TTL", "5m")
	t.Setenv("BIAS_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, int64(500), cfg.MinBet)
	assert.Equal(t, 5*time.Minute, cfg.MineRoundTTL)
	assert.False(t, cfg.BiasEnabled)
	assert.Contains(t, cfg.DSN(), "port=5432")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing jwt secret", env: map[string]string{"JWT_SECRET": "", "APP_ENV": "production"}},
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "oracle"}},
		{name: "min above max", env: map[string]string{"JWT_SECRET": "s", "MIN_BET": "20000"}},
		{name: "floor above ceiling", env: map[string]string{"JWT_SECRET": "s", "BIAS_FLOOR": "50000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestConfig_DSNMySQL(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3306", DBName: "paywin"}
	assert.Equal(t, "u:p@tcp(h:3306)/paywin?parseTime=true", cfg.DSN())
}
