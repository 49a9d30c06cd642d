package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the API.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	Geo       GeoConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the postgres connection URL.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret           string
	CookieName       string
	SessionTTL       time.Duration
	RememberTTL      time.Duration
	SecureCookie     bool
	CrossSiteCookies bool
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	OpsMailbox string
	Timeout    time.Duration
	Enabled    bool
}

type GeoConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type RateLimitConfig struct {
	Enabled    bool
	LoginLimit int
	Window     time.Duration
}

type LogConfig struct {
	Level string
}

// envBindings maps config keys to the environment variables the deployment sets.
var envBindings = map[string]string{
	"server.port":           "PORT",
	"server.mode":           "GIN_MODE",
	"server.allowedorigins": "ALLOWED_ORIGINS",
	"database.host":         "DB_HOST",
	"database.port":         "DB_PORT",
	"database.user":         "DB_USER",
	"database.password":     "DB_PASSWORD",
	"database.name":         "DB_NAME",
	"database.sslmode":      "DB_SSLMODE",
	"redis.addr":            "REDIS_ADDR",
	"redis.password":        "REDIS_PASSWORD",
	"redis.db":              "REDIS_DB",
	"jwt.secret":            "JWT_SECRET",
	"jwt.cookiename":        "SESSION_COOKIE",
	"jwt.sessionttl":        "SESSION_TTL",
	"jwt.rememberttl":       "SESSION_REMEMBER_TTL",
	"jwt.securecookie":      "SESSION_SECURE_COOKIE",
	"jwt.crosssitecookies":  "SESSION_CROSS_SITE",
	"smtp.host":             "SMTP_HOST",
	"smtp.port":             "SMTP_PORT",
	"smtp.username":         "SMTP_USERNAME",
	"smtp.password":         "SMTP_PASSWORD",
	"smtp.from":             "SMTP_FROM",
	"smtp.opsmailbox":       "SMTP_OPS_MAILBOX",
	"smtp.timeout":          "SMTP_TIMEOUT",
	"smtp.enabled":          "SMTP_ENABLED",
	"geo.baseurl":           "GEO_BASE_URL",
	"geo.timeout":           "GEO_TIMEOUT",
	"geo.cachettl":          "GEO_CACHE_TTL",
	"ratelimit.enabled":     "RATE_LIMIT_ENABLED",
	"ratelimit.loginlimit":  "RATE_LIMIT_LOGIN",
	"ratelimit.window":      "RATE_LIMIT_WINDOW",
	"log.level":             "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowedorigins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "frota")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.cookiename", "frota_session")
	v.SetDefault("jwt.sessionttl", 8*time.Hour)
	v.SetDefault("jwt.rememberttl", 30*24*time.Hour)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "no-reply@frotataxi.com")
	v.SetDefault("smtp.opsmailbox", "agendamento@jdstransp.com.br")
	v.SetDefault("smtp.timeout", 15*time.Second)

	v.SetDefault("geo.baseurl", "https://servicodados.ibge.gov.br/api/v1/localidades")
	v.SetDefault("geo.timeout", 10*time.Second)
	v.SetDefault("geo.cachettl", 24*time.Hour)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.loginlimit", 10)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("log.level", "info")
}

// Load reads configs/.env (if present), then defaults and environment variables.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("No %s file found or error loading it", envFile)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		if cfg.Server.Mode == "release" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in release mode")
		}
		cfg.JWT.Secret = "default_super_secret_key"
	}
	if cfg.Server.Mode == "release" {
		cfg.JWT.SecureCookie = true
	}

	return &cfg, nil
}
