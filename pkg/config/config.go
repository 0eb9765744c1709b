package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	DataPath        string
	APIMasterSecret string

	JWT        JWTConfig
	Admin      AdminConfig
	Log        LogConfig
	Scheduling SchedulingConfig
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AdminConfig seeds the first master user when the table is empty
type AdminConfig struct {
	Username string
	Password string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulingConfig holds the defaults handed to the scheduling core
type SchedulingConfig struct {
	Mode                   string
	DefaultStaffPerSession int
	RestDays               []string
}

// envPaths are tried in order; the first .env found wins
var envPaths = []string{".env", "../.env", "../../.env"}

func Load() (*Config, error) {
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		Env:             v.GetString("ENV"),
		Port:            v.GetString("PORT"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		DataPath:        v.GetString("DATA_PATH"),
		APIMasterSecret: v.GetString("API_MASTER_SECRET"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.Admin = AdminConfig{
		Username: v.GetString("ADMIN_USERNAME"),
		Password: v.GetString("ADMIN_PASSWORD"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduling = SchedulingConfig{
		Mode:                   v.GetString("SCHEDULING_MODE"),
		DefaultStaffPerSession: v.GetInt("DEFAULT_STAFF_PER_SESSION"),
		RestDays:               splitAndTrim(v.GetString("REST_DAYS")),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", "8000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATA_PATH", "api_keys.db")
	v.SetDefault("API_MASTER_SECRET", "")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULING_MODE", string(models.ModeMixed))
	v.SetDefault("DEFAULT_STAFF_PER_SESSION", 2)
	v.SetDefault("REST_DAYS", "Friday")
}

// SchedulerConfig converts the loaded settings into the core's config. Unknown
// rest day names are dropped; an empty list falls back to Friday.
func (c *Config) SchedulerConfig() models.Config {
	out := models.DefaultConfig()
	out.Mode = models.ParseSchedulingMode(c.Scheduling.Mode)
	if c.Scheduling.DefaultStaffPerSession > 0 {
		out.DefaultStaffPerSession = c.Scheduling.DefaultStaffPerSession
	}
	var rest models.Weekdays
	for _, name := range c.Scheduling.RestDays {
		if d, err := models.ParseWeekday(name); err == nil {
			rest = append(rest, d)
		}
	}
	if len(rest) > 0 {
		out.RestDays = rest
	}
	return out
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
