// Package config loads server settings from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	LogLevel       string
	DBPath         string // empty disables persistence
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	AnonCookieName string
	ClientOrigins  []string
	DailySalt      string
	DigitCount     int
	GameTTLMinutes int // idle minutes before an in-memory game is evicted
	Production     bool
}

// Load reads .env (if any) and then the process environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBPath:         os.Getenv("DB_PATH"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: getInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "equate_token"),
		AnonCookieName: getEnv("ANON_COOKIE_NAME", "equate_anon"),
		ClientOrigins:  splitList(getEnv("CLIENT_ORIGIN", "http://localhost:5173")),
		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		DigitCount:     getInt("DIGIT_COUNT", 4),
		GameTTLMinutes: getInt("GAME_TTL_MINUTES", 120),
		Production:     os.Getenv("NODE_ENV") == "production",
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
