package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_PATH", "JWT_EXPIRES_DAYS", "CLIENT_ORIGIN", "DIGIT_COUNT", "GAME_TTL_MINUTES", "NODE_ENV"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, "5175", c.Port)
	assert.Empty(t, c.DBPath)
	assert.Equal(t, 14, c.JWTExpiresDays)
	assert.Equal(t, []string{"http://localhost:5173"}, c.ClientOrigins)
	assert.Equal(t, 4, c.DigitCount)
	assert.Equal(t, 120, c.GameTTLMinutes)
	assert.False(t, c.Production)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_PATH", "./data/app.db")
	t.Setenv("JWT_EXPIRES_DAYS", "nope")
	t.Setenv("CLIENT_ORIGIN", "https://a.example, https://b.example ,")
	t.Setenv("DIGIT_COUNT", "6")
	t.Setenv("GAME_TTL_MINUTES", "15")
	t.Setenv("NODE_ENV", "production")

	c := FromEnv()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "./data/app.db", c.DBPath)
	assert.Equal(t, 14, c.JWTExpiresDays, "unparsable falls back")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.ClientOrigins)
	assert.Equal(t, 6, c.DigitCount)
	assert.Equal(t, 15, c.GameTTLMinutes)
	assert.True(t, c.Production)
}
