package config

import (
	"errors"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Onboarding OnboardingConfig
	Upload     UploadConfig
	SMTP       SMTPConfig
	Notify     NotifyConfig

	v *viper.Viper
}

type AppConfig struct {
	Port        string
	Env         string
	LogLevel    string
	CORSOrigins []string
}

type DBConfig struct {
	Driver       string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	TimeZone     string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
	LogLevel     string
}

type RedisConfig struct {
	URL         string
	Host        string
	Port        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// OnboardingConfig holds the workflow policy keys. They are re-read when the
// config file changes.
type OnboardingConfig struct {
	MinDocuments     int
	VerificationMode string
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type NotifyConfig struct {
	Stream       string
	EmailEnabled bool
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_CORS_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_SQLITE_PATH", "onboarding.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_LOG_LEVEL", "warn")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 20)

	v.SetDefault("ONBOARDING_MIN_DOCUMENTS", 3)
	v.SetDefault("ONBOARDING_VERIFICATION_MODE", "independent")

	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)

	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("NOTIFY_STREAM", "onboarding:events")
	v.SetDefault("NOTIFY_EMAIL_ENABLED", false)
}

// LoadConfig reads the dotenv file at path and overlays the process
// environment. A missing file is not an error; defaults and environment
// variables still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = ".env"
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:        v.GetString("APP_PORT"),
			Env:         v.GetString("APP_ENV"),
			LogLevel:    v.GetString("LOG_LEVEL"),
			CORSOrigins: splitList(v.GetString("APP_CORS_ORIGINS")),
		},
		DB: DBConfig{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			TimeZone:     v.GetString("DB_TIMEZONE"),
			SQLitePath:   v.GetString("DB_SQLITE_PATH"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
			LogLevel:     v.GetString("DB_LOG_LEVEL"),
		},
		Redis: RedisConfig{
			URL:         v.GetString("REDIS_URL"),
			Host:        v.GetString("REDIS_HOST"),
			Port:        v.GetString("REDIS_PORT"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			PoolSize:    v.GetInt("REDIS_POOL_SIZE"),
			DialTimeout: durationOr(v.Get("REDIS_DIAL_TIMEOUT"), 5*time.Second),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr(v.Get("JWT_ACCESS_EXPIRY"), 15*time.Minute),
			RefreshExpiry: durationOr(v.Get("JWT_REFRESH_EXPIRY"), 7*24*time.Hour),
		},
		Onboarding: onboardingFrom(v),
		Upload: UploadConfig{
			Dir:      v.GetString("UPLOAD_DIR"),
			MaxBytes: cast.ToInt64(v.Get("UPLOAD_MAX_BYTES")),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Notify: NotifyConfig{
			Stream:       v.GetString("NOTIFY_STREAM"),
			EmailEnabled: v.GetBool("NOTIFY_EMAIL_ENABLED"),
		},
		v: v,
	}

	return config, nil
}

func onboardingFrom(v *viper.Viper) OnboardingConfig {
	return OnboardingConfig{
		MinDocuments:     cast.ToInt(v.Get("ONBOARDING_MIN_DOCUMENTS")),
		VerificationMode: strings.ToLower(strings.TrimSpace(v.GetString("ONBOARDING_VERIFICATION_MODE"))),
	}
}

// durationOr parses values such as "15m", falling back when the value is
// missing, malformed or not positive.
func durationOr(raw interface{}, fallback time.Duration) time.Duration {
	if raw == nil {
		return fallback
	}
	d, err := cast.ToDurationE(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

var watchOnce sync.Once

// WatchOnboarding calls onChange with the re-read onboarding keys every time
// the config file is written. Only the first call starts the watcher.
func (c *Config) WatchOnboarding(onChange func(OnboardingConfig, fsnotify.Op)) {
	if c.v == nil {
		return
	}
	watchOnce.Do(func() {
		c.v.OnConfigChange(func(e fsnotify.Event) {
			onChange(onboardingFrom(c.v), e.Op)
		})
		c.v.WatchConfig()
	})
}

// splitList parses a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
