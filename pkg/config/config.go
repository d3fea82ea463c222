package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store drivers understood by kvstore.Open.
const (
	StoreDriverFile   = "file"
	StoreDriverMemory = "memory"
)

type Config struct {
	Env       string
	Host      string
	Port      int
	APIPrefix string

	Store     StoreConfig
	Session   SessionConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Seed      SeedConfig
	Exports   ExportsConfig
}

// StoreConfig selects the persistent key-value backend.
type StoreConfig struct {
	Driver string
	Dir    string
}

// SessionConfig governs session lifetime and token signing.
type SessionConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs the statistics cache.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// SeedConfig describes the account created on first start.
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// ExportsConfig points at the directory receiving rendered exports.
type ExportsConfig struct {
	Dir string
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Host = v.GetString("HOST")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{
		Driver: strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		Dir:    v.GetString("STORE_DIR"),
	}

	cfg.Session = SessionConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
		TTL:    parseDuration(v.GetString("SESSION_TTL"), 12*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Seed = SeedConfig{
		AdminName:     v.GetString("SEED_ADMIN_NAME"),
		AdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
		AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
	}

	cfg.Exports = ExportsConfig{Dir: v.GetString("EXPORTS_DIR")}

	if cfg.Store.Driver != StoreDriverFile && cfg.Store.Driver != StoreDriverMemory {
		return nil, errors.New("STORE_DRIVER must be one of file, memory")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("HOST", "127.0.0.1")
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_DRIVER", StoreDriverFile)
	v.SetDefault("STORE_DIR", "./data")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "overseas-crm")
	v.SetDefault("SESSION_TTL", "12h")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DASHBOARD_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("SEED_ADMIN_NAME", "Super User")
	v.SetDefault("SEED_ADMIN_EMAIL", "superuser@overseas.local")
	v.SetDefault("SEED_ADMIN_PASSWORD", "changeme")

	v.SetDefault("EXPORTS_DIR", "./exports")
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
