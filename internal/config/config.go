package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	// MinBcryptCost is the lowest work factor accepted for password hashing.
	MinBcryptCost = 12
	maxBcryptCost = 31
)

// Config holds all service configuration. Values come from the YAML file at
// CONFIG_PATH when set, with environment variables taking precedence.
type Config struct {
	Env      string   `yaml:"env"      env:"ENV"  env-default:"local"`
	Port     string   `yaml:"port"     env:"PORT" env-default:"8080"`
	HTTP     HTTP     `yaml:"http"`
	Storage  Storage  `yaml:"storage"`
	Redis    Redis    `yaml:"redis"`
	Session  Session  `yaml:"session"`
	Security Security `yaml:"security"`
	Admin    Admin    `yaml:"admin"`
	CORS     CORS     `yaml:"cors"`
}

type HTTP struct {
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type Storage struct {
	Driver      string `yaml:"driver"       env:"STORAGE_DRIVER" env-default:"postgres"`
	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
}

type Redis struct {
	Addr        string        `yaml:"addr"         env:"REDIS_ADDR"         env-default:"redis:6379"`
	Password    string        `yaml:"password"     env:"REDIS_PASSWORD"`
	DB          int           `yaml:"db"           env:"REDIS_DB"           env-default:"0"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout"      env:"REDIS_TIMEOUT"      env-default:"3s"`
}

type Session struct {
	TTL          time.Duration `yaml:"ttl"           env:"SESSION_TTL"           env-default:"24h"`
	CookieSecure bool          `yaml:"cookie_secure" env:"SESSION_COOKIE_SECURE" env-default:"false"`
}

type Security struct {
	BcryptCost int     `yaml:"bcrypt_cost" env:"BCRYPT_COST"      env-default:"12"`
	LoginRPS   float64 `yaml:"login_rps"   env:"LOGIN_RATE_LIMIT" env-default:"1"`
	LoginBurst int     `yaml:"login_burst" env:"LOGIN_RATE_BURST" env-default:"5"`
}

// Admin describes the bootstrap administrator created at startup when Email is set.
type Admin struct {
	Email    string `yaml:"email"     env:"ADMIN_EMAIL"`
	Password string `yaml:"password"  env:"ADMIN_PASSWORD"`
	FullName string `yaml:"full_name" env:"ADMIN_NAME" env-default:"Administrator"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173,http://localhost:3000"`
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	var (
		cfg Config
		err error
	)
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("config: %w", statErr)
		}
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for main: it exits the process on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Security.BcryptCost < MinBcryptCost || c.Security.BcryptCost > maxBcryptCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be between %d and %d", MinBcryptCost, maxBcryptCost))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.Admin.Email != "" && c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
