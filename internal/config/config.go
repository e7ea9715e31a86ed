// README: Config loader with env defaults for HTTP, DB, Redis, AMQP, identity and dispatch settings.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // VTC_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

type DispatchConfig struct {
	OverlapWindow time.Duration
	LockTTL       time.Duration
}

type Config struct {
	HTTP struct {
		Addr        string
		CORSOrigins []string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	AMQP struct {
		URL      string
		Exchange string
	}
	Firebase struct {
		ProjectID       string
		CredentialsFile string
	}
	JWT struct {
		Secret string
	}
	Booking struct {
		Currency string
		Location *time.Location
	}
	Dispatch DispatchConfig
	LogLevel slog.Level
}

// FirebaseEnabled reports whether identity tokens are Firebase ID tokens.
// Otherwise they are HS256 JWTs signed with JWT.Secret.
func (c Config) FirebaseEnabled() bool { return c.Firebase.ProjectID != "" }

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: .env: %w", err)
	}

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("VTC_HTTP_ADDR", ":8080")
	cfg.HTTP.CORSOrigins = envList("VTC_CORS_ORIGINS")
	cfg.DB.DSN = os.Getenv("VTC_DB_DSN")
	cfg.Redis.Addr = envOrDefault("VTC_REDIS_ADDR", "localhost:6379")
	cfg.AMQP.URL = os.Getenv("VTC_AMQP_URL")
	cfg.AMQP.Exchange = envOrDefault("VTC_AMQP_EXCHANGE", "vtc.booking.events")
	cfg.Firebase.ProjectID = os.Getenv("VTC_FIREBASE_PROJECT_ID")
	cfg.Firebase.CredentialsFile = os.Getenv("VTC_FIREBASE_CREDENTIALS_FILE")
	cfg.JWT.Secret = os.Getenv("VTC_JWT_SECRET")
	cfg.Booking.Currency = envOrDefault("VTC_CURRENCY", "EUR")
	cfg.Dispatch.OverlapWindow = envOrDefaultDuration("VTC_DISPATCH_OVERLAP_WINDOW", 2*time.Hour)
	cfg.Dispatch.LockTTL = envOrDefaultDuration("VTC_DISPATCH_LOCK_TTL", 5*time.Second)

	loc, err := time.LoadLocation(envOrDefault("VTC_TIMEZONE", "Europe/Paris"))
	if err != nil {
		return Config{}, fmt.Errorf("config: VTC_TIMEZONE: %w", err)
	}
	cfg.Booking.Location = loc

	if err := cfg.LogLevel.UnmarshalText([]byte(envOrDefault("VTC_LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("config: VTC_LOG_LEVEL: %w", err)
	}

	if cfg.DB.DSN == "" {
		return Config{}, errors.New("config: VTC_DB_DSN is required")
	}
	if cfg.Firebase.ProjectID == "" && cfg.JWT.Secret == "" {
		return Config{}, errors.New("config: set VTC_FIREBASE_PROJECT_ID or VTC_JWT_SECRET")
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
