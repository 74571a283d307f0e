package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 60*time.Minute, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.Auth.AdminEmails)
	assert.Equal(t, "room", cfg.Schedule.Scope)
	assert.Equal(t, 10*time.Second, cfg.Schedule.LockTTL)
	assert.Equal(t, "@hourly", cfg.Schedule.PurgeSchedule)
	assert.Equal(t, 4, cfg.Audit.Workers)
	assert.Equal(t, "room_booking", cfg.Mongo.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"ENV":            "production",
		"TOKEN_TTL":      "15m",
		"ADMIN_EMAILS":   "ops@example.com,root@example.com",
		"SCHEDULE_SCOPE": "global",
		"REDIS_DB":       "2",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"ops@example.com", "root@example.com"}, cfg.Auth.AdminEmails)
	assert.Equal(t, "global", cfg.Schedule.Scope)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadFrom_RequiresSecret(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
}

func TestLoadFrom_RejectsUnknownScope(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"SCHEDULE_SCOPE": "building",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEDULE_SCOPE")
}
