// Package config loads and validates environment variables at startup.
// Fail-fast: an invalid value stops the process before anything listens.
// A .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"

	"jobmate/review-service/internal/catalog"
)

// Config holds all runtime configuration for the review service.
type Config struct {
	HTTPPort    string
	GRPCPort    string
	DatabaseURL string // optional; memory only when empty
	RedisURL    string // optional; events are dropped when empty

	SeedFile   string
	SeedCount  int
	SeedRandom int64
	WatchSeed  bool

	AdzunaAppID         string
	AdzunaAppKey        string
	AdzunaCountry       string // e.g. "fr", "gb", "us"
	ImportTitles        []string
	ImportLocations     []string
	ImportRedFlags      []string
	ImportIntervalHours int // 0 disables the cron job

	CollationLocale string
	TagMode         catalog.TagMode
	SalaryMissing   catalog.MissingPolicy

	LogLevel       string
	LogDevelopment bool
}

var defaults = map[string]any{
	"HTTP_PORT":             "8083",
	"GRPC_PORT":             "9093",
	"SEED_COUNT":            24,
	"SEED_RANDOM":           42,
	"WATCH_SEED":            false,
	"ADZUNA_COUNTRY":        "fr",
	"IMPORT_TITLES":         "stage développeur,internship software",
	"IMPORT_LOCATIONS":      "Paris,Lyon",
	"IMPORT_RED_FLAGS":      "unpaid,commission only",
	"IMPORT_INTERVAL_HOURS": 6,
	"COLLATION_LOCALE":      "en",
	"TAG_MODE":              string(catalog.TagsAll),
	"SALARY_MISSING":        string(catalog.MissingPassIfZeroMin),
	"LOG_LEVEL":             "info",
	"LOG_DEVELOPMENT":       false,
}

// Load reads .env (if any) and the environment and returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPPort:            v.GetString("HTTP_PORT"),
		GRPCPort:            v.GetString("GRPC_PORT"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		SeedFile:            v.GetString("SEED_FILE"),
		WatchSeed:           v.GetBool("WATCH_SEED"),
		AdzunaAppID:         v.GetString("ADZUNA_APP_ID"),
		AdzunaAppKey:        v.GetString("ADZUNA_APP_KEY"),
		AdzunaCountry:       v.GetString("ADZUNA_COUNTRY"),
		ImportTitles:        splitList(v.GetString("IMPORT_TITLES")),
		ImportLocations:     splitList(v.GetString("IMPORT_LOCATIONS")),
		ImportRedFlags:      splitList(v.GetString("IMPORT_RED_FLAGS")),
		CollationLocale:     v.GetString("COLLATION_LOCALE"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogDevelopment:      v.GetBool("LOG_DEVELOPMENT"),
	}

	var err error
	if cfg.SeedCount, err = intValue(v, "SEED_COUNT"); err != nil {
		return nil, err
	}
	if cfg.SeedCount < 0 {
		return nil, fmt.Errorf("SEED_COUNT must not be negative, got %d", cfg.SeedCount)
	}
	seed, err := intValue(v, "SEED_RANDOM")
	if err != nil {
		return nil, err
	}
	cfg.SeedRandom = int64(seed)
	if cfg.ImportIntervalHours, err = intValue(v, "IMPORT_INTERVAL_HOURS"); err != nil {
		return nil, err
	}
	if cfg.ImportIntervalHours < 0 {
		return nil, fmt.Errorf("IMPORT_INTERVAL_HOURS must be 0 or a positive integer, got %d", cfg.ImportIntervalHours)
	}

	for _, p := range []struct{ key, val string }{{"HTTP_PORT", cfg.HTTPPort}, {"GRPC_PORT", cfg.GRPCPort}} {
		n, err := strconv.Atoi(p.val)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("%s must be a port number, got %q", p.key, p.val)
		}
	}
	if cfg.HTTPPort == cfg.GRPCPort {
		return nil, fmt.Errorf("HTTP_PORT and GRPC_PORT must differ, both are %s", cfg.HTTPPort)
	}

	if cfg.TagMode, err = catalog.ParseTagMode(v.GetString("TAG_MODE")); err != nil {
		return nil, fmt.Errorf("TAG_MODE: %w", err)
	}
	if cfg.SalaryMissing, err = catalog.ParseMissingPolicy(v.GetString("SALARY_MISSING")); err != nil {
		return nil, fmt.Errorf("SALARY_MISSING: %w", err)
	}
	if _, err := language.Parse(cfg.CollationLocale); err != nil {
		return nil, fmt.Errorf("COLLATION_LOCALE %q: %w", cfg.CollationLocale, err)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// Defaults returns a copy of the built-in default values keyed by variable name.
func Defaults() map[string]any {
	out := make(map[string]any, len(defaults))
	for k, d := range defaults {
		out[k] = d
	}
	return out
}

func intValue(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

// splitList parses a comma separated variable, dropping blank entries.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
