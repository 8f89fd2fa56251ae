package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string `validate:"oneof=development staging production"`
	Port      int    `validate:"min=1,max=65535"`
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Rotation RotationConfig
	Refresh  RefreshConfig
	Catalog  CatalogConfig
}

type DatabaseConfig struct {
	Host         string `validate:"required"`
	Port         int    `validate:"min=1,max=65535"`
	User         string `validate:"required"`
	Password     string
	Name         string `validate:"required"`
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RotationConfig tunes the presentation rotation engine.
type RotationConfig struct {
	TickInterval time.Duration
	// AdOverrideAfter is how long a lock may run before advertisements are
	// forced in. The reference deployment ran 5m during testing and intends
	// 1h for production, so this stays configurable.
	AdOverrideAfter time.Duration
	AdOverrideCount int
}

// RefreshConfig tunes the adaptive schedule polling loop.
type RefreshConfig struct {
	StandardInterval  time.Duration
	FastInterval      time.Duration
	MaxLoadAttempts   int
	SkipWarnThreshold int
}

// CatalogConfig governs profile/advertisement catalog loading.
type CatalogConfig struct {
	RefreshInterval time.Duration
	CacheTTL        time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		Enabled:  v.GetBool("REDIS_ENABLED"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Rotation = RotationConfig{
		TickInterval:    parseDuration(v.GetString("ROTATION_TICK_INTERVAL"), 15*time.Second),
		AdOverrideAfter: parseDuration(v.GetString("ROTATION_AD_OVERRIDE_AFTER"), time.Hour),
		AdOverrideCount: v.GetInt("ROTATION_AD_OVERRIDE_COUNT"),
	}
	if cfg.Rotation.AdOverrideCount <= 0 {
		cfg.Rotation.AdOverrideCount = 2
	}

	cfg.Refresh = RefreshConfig{
		StandardInterval:  parseDuration(v.GetString("REFRESH_STANDARD_INTERVAL"), 60*time.Second),
		FastInterval:      parseDuration(v.GetString("REFRESH_FAST_INTERVAL"), 15*time.Second),
		MaxLoadAttempts:   v.GetInt("REFRESH_MAX_LOAD_ATTEMPTS"),
		SkipWarnThreshold: v.GetInt("REFRESH_SKIP_WARN_THRESHOLD"),
	}
	if cfg.Refresh.MaxLoadAttempts <= 0 {
		cfg.Refresh.MaxLoadAttempts = 4
	}
	if cfg.Refresh.SkipWarnThreshold <= 0 {
		cfg.Refresh.SkipWarnThreshold = 4
	}

	cfg.Catalog = CatalogConfig{
		RefreshInterval: parseDuration(v.GetString("CATALOG_REFRESH_INTERVAL"), 5*time.Minute),
		CacheTTL:        parseDuration(v.GetString("CATALOG_CACHE_TTL"), 10*time.Minute),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gssda_events")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_ENABLED", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ROTATION_TICK_INTERVAL", "15s")
	v.SetDefault("ROTATION_AD_OVERRIDE_AFTER", "1h")
	v.SetDefault("ROTATION_AD_OVERRIDE_COUNT", 2)

	v.SetDefault("REFRESH_STANDARD_INTERVAL", "60s")
	v.SetDefault("REFRESH_FAST_INTERVAL", "15s")
	v.SetDefault("REFRESH_MAX_LOAD_ATTEMPTS", 4)
	v.SetDefault("REFRESH_SKIP_WARN_THRESHOLD", 4)

	v.SetDefault("CATALOG_REFRESH_INTERVAL", "5m")
	v.SetDefault("CATALOG_CACHE_TTL", "10m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
