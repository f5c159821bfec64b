package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverMongo    = "mongo"
	DriverSupabase = "supabase"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Reminders RemindersConfig `mapstructure:"reminders"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig selects the logging backend and verbosity
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Backend string `mapstructure:"backend"`
}

// StorageConfig selects the repository implementation
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// RedisConfig configures the idempotency store. When Enabled is false the
// storage driver keeps idempotency keys itself.
type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// CacheConfig sizes the in-process preferences cache
type CacheConfig struct {
	PreferencesTTL time.Duration `mapstructure:"preferences_ttl"`
	MaxCost        int64         `mapstructure:"max_cost"`
}

// CORSConfig lists the origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig configures the per-client token bucket
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// AnalyticsConfig holds the service-wide analytics defaults. Users override
// timezone, week start and budget through their preferences.
type AnalyticsConfig struct {
	Timezone           string  `mapstructure:"timezone"`
	WeekStart          string  `mapstructure:"week_start"`
	DailyBudgetMin     int     `mapstructure:"daily_budget_min"`
	StreakThresholdMin int     `mapstructure:"streak_threshold_min"`
	FocusActiveRatio   float64 `mapstructure:"focus_active_ratio"`
}

// RemindersConfig holds the reminder dispatcher schedule (cron syntax)
type RemindersConfig struct {
	Schedule string `mapstructure:"schedule"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.backend", "slog")

	v.SetDefault("storage.driver", DriverMongo)
	v.SetDefault("mongo.database", "todotofu")
	v.SetDefault("mongo.timeout", 10*time.Second)

	v.SetDefault("auth.token_ttl", 7*24*time.Hour)

	v.SetDefault("redis.enabled", false)

	v.SetDefault("cache.preferences_ttl", 5*time.Minute)
	v.SetDefault("cache.max_cost", 10000)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("analytics.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("analytics.week_start", "sunday")
	v.SetDefault("analytics.daily_budget_min", 720)
	v.SetDefault("analytics.streak_threshold_min", 60)
	v.SetDefault("analytics.focus_active_ratio", 0.8)

	v.SetDefault("reminders.schedule", "@every 1m")
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TODOTOFU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names used by common hosting platforms
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("mongo.uri", "TODOTOFU_MONGO_URI", "MONGO_URI")
	_ = v.BindEnv("auth.jwt_secret", "TODOTOFU_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("redis.url", "TODOTOFU_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("supabase.url", "TODOTOFU_SUPABASE_URL", "SUPABASE_URL")
	_ = v.BindEnv("supabase.service_key", "TODOTOFU_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Comma separated lists from the environment keep their padding
	config.CORS.AllowedOrigins = splitList(strings.Join(config.CORS.AllowedOrigins, ","))

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("TODOTOFU_AUTH_JWT_SECRET is required")
	}

	switch c.Storage.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("TODOTOFU_MONGO_URI is required for the mongo driver")
		}
	case DriverSupabase:
		if c.Supabase.URL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the supabase driver")
		}
		if c.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_KEY is required for the supabase driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q (use %s or %s)", c.Storage.Driver, DriverMongo, DriverSupabase)
	}

	if c.Redis.Enabled && c.Redis.URL == "" {
		return fmt.Errorf("TODOTOFU_REDIS_URL is required when redis is enabled")
	}

	if c.Analytics.DailyBudgetMin < 0 {
		return fmt.Errorf("analytics.daily_budget_min must not be negative")
	}
	if c.Analytics.FocusActiveRatio <= 0 || c.Analytics.FocusActiveRatio > 1 {
		return fmt.Errorf("analytics.focus_active_ratio must be in (0, 1]")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
