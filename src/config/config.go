package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config is the root configuration of the server.
// Values come from a yaml file (when one is given) overlaid by env vars.
type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"development"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Mongo   MongoConfig   `yaml:"mongo"`
	SQLite  SQLiteConfig  `yaml:"sqlite"`
	Session SessionConfig `yaml:"session"`
	Auth    AuthConfig    `yaml:"auth"`
	Redis   RedisConfig   `yaml:"redis"`
}

type HTTPConfig struct {
	Host        string   `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port        string   `yaml:"port" env:"PORT" env-default:"5000"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"http://localhost:5173,http://localhost:3000"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
}

type MongoConfig struct {
	URI      string        `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string        `yaml:"database" env:"MONGO_DATABASE" env-default:"halalbiye"`
	Timeout  time.Duration `yaml:"timeout" env:"MONGO_TIMEOUT" env-default:"10s"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"./halalbiye.db"`
}

// SessionConfig drives both the JWT expiry and the session cookie max-age,
// so the two lifetimes are always the same value.
type SessionConfig struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	TTL        time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"token"`
}

type AuthConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_SALT_ROUNDS" env-default:"10"`
}

// RedisConfig is optional; an empty URL keeps token revocation in process memory.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration with the following priority:
// explicit path, then CONFIG_PATH, then environment variables only.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri is required for the mongo driver"))
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("sqlite.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q, got %q", DriverMongo, DriverSQLite, c.Storage.Driver))
	}

	if c.Session.Secret == "" {
		errs = append(errs, errors.New("session.secret is required"))
	} else if c.IsProduction() && len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session.secret must be at least 32 bytes in production"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookie_name is required"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Mongo.Timeout <= 0 {
		errs = append(errs, errors.New("mongo.timeout must be positive"))
	}

	return errors.Join(errs...)
}
