package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 4, cfg.Tasks.Workers)
	assert.Equal(t, 64, cfg.Tasks.QueueSize)
	assert.True(t, cfg.Store.CompositeAtomic)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
}

func TestOverridesFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("TASK_WORKERS", "2")
	t.Setenv("COMPOSITE_ATOMIC", "false")
	t.Setenv("CACHE_TTL", "not-a-duration")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.False(t, cfg.Store.CompositeAtomic)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
}
