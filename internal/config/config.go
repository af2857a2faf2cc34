package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the portal service
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    LoggerConfig    `yaml:"logger"`
	PortalAPI PortalAPIConfig `yaml:"portal_api"`
	Session   SessionConfig   `yaml:"session"`
	Redis     RedisConfig     `yaml:"redis"`
	S3        S3Config        `yaml:"s3"`
	Jobs      JobsConfig      `yaml:"jobs"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// PortalAPIConfig points at the remote news platform REST API
type PortalAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout of zero means outbound calls never time out
	Timeout time.Duration `yaml:"timeout"`
	// Locale selects the language of validation messages ("vi" or "en")
	Locale string `yaml:"locale"`
}

// SessionConfig selects where the bearer token and user id are persisted.
// Store is one of "memory", "database" or "redis".
type SessionConfig struct {
	Store string `yaml:"store"`
	// Shared keeps a single session for the whole process instead of one per
	// caller. Only the command line client sets it.
	Shared bool `yaml:"-"`
	// IdleTimeout expires sessions unused for that long; zero keeps them
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig holds redis configuration for the session store
type RedisConfig struct {
	URL       string `yaml:"url"`
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// S3Config holds configuration for the optional image uploader
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"`
}

// JobsConfig holds background job schedules (cron spec syntax)
type JobsConfig struct {
	SessionCheckSpec string `yaml:"session_check_spec"`
	CleanupSpec      string `yaml:"cleanup_spec"`
	// StateIdleTimeout is how long feeds, thread view-models and cached
	// threads are kept without use
	StateIdleTimeout time.Duration `yaml:"state_idle_timeout"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
}

// Load reads configuration from the yaml file at path, when present, and applies
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8010",
			Mode:            "debug",
			BasePath:        "/api/portal",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		PortalAPI: PortalAPIConfig{
			BaseURL: "http://localhost:8000/api",
			Locale:  "vi",
		},
		Session: SessionConfig{
			Store:           "memory",
			IdleTimeout:     24 * time.Hour,
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "portal:session:",
		},
		Jobs: JobsConfig{
			SessionCheckSpec: "@every 5m",
			CleanupSpec:      "@every 10m",
			StateIdleTimeout: 30 * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: "http://localhost:3000",
		},
	}
}

// Validate checks the configuration for values the service cannot start without
func (c *Config) Validate() error {
	if c.PortalAPI.BaseURL == "" {
		return fmt.Errorf("portal_api.base_url is required")
	}
	switch c.Session.Store {
	case "memory", "redis":
	case "database":
		if c.Session.DSN == "" {
			return fmt.Errorf("session.dsn is required when session.store is database")
		}
	default:
		return fmt.Errorf("unknown session store: %q", c.Session.Store)
	}
	switch c.PortalAPI.Locale {
	case "vi", "en":
	default:
		return fmt.Errorf("unsupported locale: %q", c.PortalAPI.Locale)
	}
	return nil
}

// Origins returns the configured CORS origins as a slice
func (c CORSConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Enabled reports whether the image uploader has enough configuration to start
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if apiURL := os.Getenv("PORTAL_API_URL"); apiURL != "" {
		cfg.PortalAPI.BaseURL = strings.TrimRight(apiURL, "/")
	}
	if timeout := os.Getenv("PORTAL_API_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.PortalAPI.Timeout = d
		}
	}
	if locale := os.Getenv("PORTAL_LOCALE"); locale != "" {
		cfg.PortalAPI.Locale = locale
	}
	if store := os.Getenv("SESSION_STORE"); store != "" {
		cfg.Session.Store = store
	}
	if dsn := os.Getenv("SESSION_DSN"); dsn != "" {
		cfg.Session.DSN = dsn
	}
	if idle := os.Getenv("SESSION_IDLE_TIMEOUT"); idle != "" {
		if d, err := time.ParseDuration(idle); err == nil {
			cfg.Session.IdleTimeout = d
		}
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			cfg.Redis.DB = db
		}
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.S3.Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		cfg.S3.Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.S3.Endpoint = endpoint
	}
	if accessKey := os.Getenv("S3_ACCESS_KEY"); accessKey != "" {
		cfg.S3.AccessKey = accessKey
	}
	if secretKey := os.Getenv("S3_SECRET_KEY"); secretKey != "" {
		cfg.S3.SecretKey = secretKey
	}
	if publicURL := os.Getenv("S3_PUBLIC_URL"); publicURL != "" {
		cfg.S3.PublicURL = publicURL
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = origins
	}
}
