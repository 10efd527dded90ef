package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	Port                string
	Env                 string
	MongoURI            string
	DBName              string
	StoreBackend        string
	StoreTimeout        time.Duration
	RateLimitRPS        float64
	RateLimitBurst      int
	AuditExportInterval time.Duration
}

// LoadConfig reads .env when present, then the process environment. Unset
// variables fall back to development defaults; malformed values are errors.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := Config{
		Port:         getenv("PORT", "3000"),
		Env:          getenv("ENV", "development"),
		MongoURI:     getenv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:       getenv("DB_NAME", "local_library"),
		StoreBackend: getenv("STORE_BACKEND", BackendMongo),
	}

	var err error
	if cfg.StoreTimeout, err = duration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.AuditExportInterval, err = duration("AUDIT_EXPORT_INTERVAL", 30*time.Second); err != nil {
		return Config{}, err
	}

	cfg.RateLimitRPS = 2
	if val := os.Getenv("RATE_LIMIT_RPS"); val != "" {
		if cfg.RateLimitRPS, err = strconv.ParseFloat(val, 64); err != nil || cfg.RateLimitRPS < 0 {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q", val)
		}
	}

	cfg.RateLimitBurst = 4
	if val := os.Getenv("RATE_LIMIT_BURST"); val != "" {
		if cfg.RateLimitBurst, err = strconv.Atoi(val); err != nil || cfg.RateLimitBurst < 0 {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_BURST %q", val)
		}
	}

	if cfg.StoreBackend != BackendMongo && cfg.StoreBackend != BackendMemory {
		return Config{}, fmt.Errorf("invalid STORE_BACKEND %q: want %s or %s", cfg.StoreBackend, BackendMongo, BackendMemory)
	}
	return cfg, nil
}

// RateLimited reports whether requests should be throttled at all.
func (c Config) RateLimited() bool {
	return c.RateLimitRPS > 0
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, val)
	}
	return d, nil
}
