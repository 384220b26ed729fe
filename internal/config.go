package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Service       ServiceConfig       `mapstructure:"service"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	RootPath       string        `mapstructure:"root_path"`
	AllowedOrigins string        `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AuthConfig covers both verifier modes: "remote" exchanges bearer tokens with
// the identity service, "local" validates HMAC-signed JWTs in process.
type AuthConfig struct {
	Mode           string        `mapstructure:"mode"`
	ServiceURL     string        `mapstructure:"service_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SecretKey      string        `mapstructure:"secret_key"`
	Algorithm      string        `mapstructure:"algorithm"`
	TokenLifetime  time.Duration `mapstructure:"token_lifetime"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServiceConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

const (
	AuthModeRemote = "remote"
	AuthModeLocal  = "local"
)

// LoadConfigFromEnv builds the configuration from environment variables,
// used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("PORT", 8001),
			RootPath:       getEnv("ROOT_PATH", ""),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			Mode:           getEnv("AUTH_MODE", AuthModeRemote),
			ServiceURL:     getEnv("AUTH_SERVICE_URL", "http://127.0.0.1:8000/api/v1/auth"),
			RequestTimeout: getEnvAsDuration("AUTH_REQUEST_TIMEOUT", 10*time.Second),
			SecretKey:      getEnv("SECRET_KEY", ""),
			Algorithm:      getEnv("ALGORITHM", "HS256"),
			TokenLifetime:  time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "eygar-payment-service"),
			Version: getEnv("SERVICE_VERSION", "1.0.0"),
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("auth config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.RootPath != "" && !strings.HasPrefix(c.RootPath, "/") {
		return fmt.Errorf("root_path must start with /, got %q", c.RootPath)
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("database source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *AuthConfig) Validate() error {
	switch c.Mode {
	case AuthModeRemote:
		if c.ServiceURL == "" {
			return errors.New("auth service_url is required in remote mode")
		}
		if _, err := url.Parse(c.ServiceURL); err != nil {
			return fmt.Errorf("invalid auth service_url: %w", err)
		}
	case AuthModeLocal:
		if c.SecretKey == "" {
			return errors.New("secret_key is required in local mode")
		}
		if c.Algorithm != "HS256" && c.Algorithm != "HS384" && c.Algorithm != "HS512" {
			return fmt.Errorf("unsupported signing algorithm %q", c.Algorithm)
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Mode)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("auth request_timeout must be positive")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}
