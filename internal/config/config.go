// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	Google    GoogleConfig    `koanf:"google"`
	Session   SessionConfig   `koanf:"session"`
	Email     EmailConfig     `koanf:"email"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	FrontendURL string `koanf:"frontend_url"`
	BackendURL  string `koanf:"backend_url"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	Secret string        `koanf:"secret"`
	Expire time.Duration `koanf:"expire"`
	Issuer string        `koanf:"issuer"`
}

type GoogleConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
}

func (g *GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

func (g *GoogleConfig) CallbackURL(backendURL string) string {
	return backendURL + "/api/auth/google/callback"
}

type SessionConfig struct {
	CookieName string        `koanf:"cookie_name"`
	TTL        time.Duration `koanf:"ttl"`
}

type EmailConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"`
	Timeout  time.Duration `koanf:"timeout"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		k := koanf.New(".")

		if err := loadDefaults(k); err != nil {
			loadErr = fmt.Errorf("load defaults: %w", err)
			return
		}

		// The config file is optional; env vars alone can configure a
		// deployment.
		if configPath != "" {
			if _, statErr := os.Stat(configPath); statErr == nil {
				if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
					loadErr = fmt.Errorf("load config file: %w", err)
					return
				}
			}
		}

		if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
			loadErr = fmt.Errorf("load env vars: %w", err)
			return
		}

		cfg = &Config{}
		if err := k.Unmarshal("", cfg); err != nil {
			loadErr = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		if err := validate(cfg); err != nil {
			loadErr = fmt.Errorf("validate config: %w", err)
			return
		}
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":         "WeManage",
		"app.version":      "1.0.0",
		"app.environment":  "development",
		"app.frontend_url": "http://localhost:5173",
		"app.backend_url":  "http://localhost:8080",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.expire": "720h",
		"jwt.issuer": "wemanage",

		"session.cookie_name": "wm_session",
		"session.ttl":         "24h",

		"email.host":    "smtp-relay.brevo.com",
		"email.port":    587,
		"email.timeout": "10s",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:5173"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "wemanage-api",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":         "database.url",
	"REDIS_URL":            "redis.url",
	"ENVIRONMENT":          "app.environment",
	"FRONTEND_URL":         "app.frontend_url",
	"BACKEND_URL":          "app.backend_url",
	"HOST":                 "server.host",
	"PORT":                 "server.port",
	"LOG_LEVEL":            "log.level",
	"LOG_FORMAT":           "log.format",
	"JWT_SECRET":           "jwt.secret",
	"JWT_EXPIRE":           "jwt.expire",
	"JWT_ISSUER":           "jwt.issuer",
	"GOOGLE_CLIENT_ID":     "google.client_id",
	"GOOGLE_CLIENT_SECRET": "google.client_secret",
	"SESSION_TTL":          "session.ttl",
	"EMAIL_HOST":           "email.host",
	"EMAIL_PORT":           "email.port",
	"EMAIL_USER":           "email.username",
	"EMAIL_PASS":           "email.password",
	"EMAIL_FROM":           "email.from",
	"RATE_LIMIT_REQUESTS":  "rate_limit.requests",
	"RATE_LIMIT_WINDOW":    "rate_limit.window",
	"RATE_LIMIT_BURST":     "rate_limit.burst",
	"OTEL_ENDPOINT":        "otel.endpoint",
	"OTEL_SERVICE_NAME":    "otel.service_name",
	"OTEL_ENABLED":         "otel.enabled",
	"OTEL_INSECURE":        "otel.insecure",
	"OTEL_SAMPLE_RATE":     "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	// Bearer tokens cannot be signed or verified without the secret;
	// refuse to boot rather than fail on the first request.
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.Expire <= 0 {
		return fmt.Errorf("jwt.expire must be positive")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
