package config

import (
	"os"
	"strconv"
	"time"

	"kojen-data/internal/domain"
)

// Config holds everything the kojen-data service reads from the environment.
type Config struct {
	HTTP struct {
		Addr string
	}
	RedisEnabled bool
	Redis        struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Sheets     SheetsConfig
	Window     int
	BatchDelay time.Duration
}

// SheetsConfig addresses the spreadsheet web apps, one deployment per record
// kind. An empty URL disables that kind's remote operations.
type SheetsConfig struct {
	URLs    map[domain.Kind]string
	Timeout time.Duration
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true: if Redis is unavailable, kojen-data falls back to an
	// in-process cache. This keeps plain `go run` usable without a broker.
	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Sheets.URLs = map[domain.Kind]string{
		domain.KindSteam:       getEnv("SHEETS_URL_BUHAR", ""),
		domain.KindHourly:      getEnv("SHEETS_URL_SAATLIK", ""),
		domain.KindMaintenance: getEnv("SHEETS_URL_BAKIM", ""),
		domain.KindFault:       getEnv("SHEETS_URL_ARIZA", ""),
		domain.KindShift:       getEnv("SHEETS_URL_VARDIYA", ""),
	}
	cfg.Sheets.Timeout = parseDuration(getEnv("SHEETS_TIMEOUT", "30s"), 30*time.Second)

	cfg.Window = parseInt(getEnv("VIEW_WINDOW", "34"), 34)
	cfg.BatchDelay = parseDuration(getEnv("BATCH_DELAY", "300ms"), 300*time.Millisecond)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
