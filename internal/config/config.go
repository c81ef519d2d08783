package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the server configuration, read from the environment after an
// optional .env file.
type Config struct {
	Port     string
	DBDriver string
	DBURL    string
	SeedPath string

	LogLevel  string
	LogFormat string

	RoutingBaseURL string
	RoutingProfile string
	RoutingTimeout time.Duration

	RouteCacheSize int
	RedisAddr      string
	RedisTTL       time.Duration

	PlanRefineWait time.Duration
	// Expose /metrics. The collectors run either way.
	MetricsEnabled bool

	Estimation EstimationConfig
}

// Overrides for the estimation policy. Zero means "keep the default".
type EstimationConfig struct {
	AverageSpeedKmh   float64
	FuelPricePerLitre float64
	TollRatePerKm     float64
	DefaultKmPerLitre float64
	DefaultServiceMin float64
}

// LoadEnv reads .env into the process environment when present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found (using environment variables)")
	}
}

func Load() (*Config, error) {
	LoadEnv()

	cfg := &Config{
		Port:           Get("PORT", "8080"),
		DBDriver:       Get("DB_DRIVER", "sqlite"),
		DBURL:          Get("DATABASE_URL", "data/app.db"),
		SeedPath:       Get("SEED_PATH", ""),
		LogLevel:       Get("LOG_LEVEL", "info"),
		LogFormat:      Get("LOG_FORMAT", "text"),
		RoutingBaseURL: Get("ROUTING_BASE_URL", "https://router.project-osrm.org"),
		RoutingProfile: Get("ROUTING_PROFILE", "driving"),
		RoutingTimeout: GetDuration("ROUTING_TIMEOUT", 8*time.Second),
		RouteCacheSize: GetInt("ROUTE_CACHE_SIZE", 500),
		RedisAddr:      Get("REDIS_ADDR", ""),
		RedisTTL:       GetDuration("REDIS_TTL", 24*time.Hour),
		PlanRefineWait: GetDuration("PLAN_REFINE_WAIT", 5*time.Second),
		MetricsEnabled: GetBool("METRICS_ENABLED", true),
		Estimation: EstimationConfig{
			AverageSpeedKmh:   GetFloat("EST_AVERAGE_SPEED_KMH", 0),
			FuelPricePerLitre: GetFloat("EST_FUEL_PRICE", 0),
			TollRatePerKm:     GetFloat("EST_TOLL_RATE", 0),
			DefaultKmPerLitre: GetFloat("EST_KM_PER_LITRE", 0),
			DefaultServiceMin: GetFloat("EST_SERVICE_MINUTES", 0),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.RoutingBaseURL) == "" {
		return fmt.Errorf("ROUTING_BASE_URL is required")
	}
	if c.RouteCacheSize < 1 {
		return fmt.Errorf("ROUTE_CACHE_SIZE must be positive, got %d", c.RouteCacheSize)
	}
	if c.RoutingTimeout <= 0 {
		return fmt.Errorf("ROUTING_TIMEOUT must be positive, got %s", c.RoutingTimeout)
	}
	return nil
}

// Get returns the trimmed value of key or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func GetFloat(key string, fallback float64) float64 {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid float setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return f
}

func GetBool(key string, fallback bool) bool {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

// GetDuration parses Go duration syntax ("8s", "250ms").
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
