package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "roadmap.db")
	t.Setenv("PORT", "8080")
	t.Setenv("REDIS_DB", "")
	t.Setenv("LEGACY_NOTES_ON_LOAD", "")

	cfg := Load()

	assert.Equal(t, "roadmap.db", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.LegacyNotesOnLoad)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/roadmap")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LEGACY_NOTES_ON_LOAD", "true")
	t.Setenv("AMQP_EXCHANGE", "custom")

	cfg := Load()

	assert.Equal(t, "postgres://localhost/roadmap", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.LegacyNotesOnLoad)
	assert.Equal(t, "custom", cfg.AMQPExchange)
}

func TestGetInt_Invalid(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getInt("SOME_INT", 7))
}
