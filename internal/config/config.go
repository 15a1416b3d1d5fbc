package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Journal   JournalConfig   `yaml:"journal"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Identity  IdentityConfig  `yaml:"identity"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type JournalConfig struct {
	Path string `yaml:"path"`
	// SyncWrites fsyncs every journal batch.
	SyncWrites bool `yaml:"sync_writes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type AuthConfig struct {
	Enabled   bool     `yaml:"enabled"`
	JWTSecret string   `yaml:"jwt_secret"`
	JWTIssuer string   `yaml:"jwt_issuer"`
	APIKeys   []APIKey `yaml:"api_keys"`
}

// APIKey binds a static bearer token to a principal.
type APIKey struct {
	Token       string `yaml:"token"`
	Principal   string `yaml:"principal"`
	Description string `yaml:"description"`
}

type IdentityConfig struct {
	DefaultPrincipal string `yaml:"default_principal"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "sciledger.db",
		},
		Journal: JournalConfig{
			Path: "sciledger-journal",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: TransportStdio,
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		Identity: IdentityConfig{
			DefaultPrincipal: "local",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("SCILEDGER_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("SCILEDGER_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("SCILEDGER_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCILEDGER_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("SCILEDGER_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if journalPath := os.Getenv("SCILEDGER_JOURNAL_PATH"); journalPath != "" {
		cfg.Journal.Path = journalPath
	}
	if level := os.Getenv("SCILEDGER_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("SCILEDGER_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("SCILEDGER_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if enabled := os.Getenv("SCILEDGER_AUTH_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCILEDGER_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = v
	}
	if secret := os.Getenv("SCILEDGER_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if principal := os.Getenv("SCILEDGER_PRINCIPAL"); principal != "" {
		cfg.Identity.DefaultPrincipal = principal
	}
	if enabled := os.Getenv("SCILEDGER_METRICS_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCILEDGER_METRICS_ENABLED: %w", err)
		}
		cfg.Metrics.Enabled = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot start a server.
func (c Config) Validate() error {
	var errs []error
	switch c.Transport.Mode {
	case TransportStdio:
		if c.Identity.DefaultPrincipal == "" {
			errs = append(errs, errors.New("identity.default_principal is required in stdio mode"))
		}
	case TransportHTTP:
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
		}
		if !c.Auth.Enabled && c.Identity.DefaultPrincipal == "" {
			errs = append(errs, errors.New("identity.default_principal is required when auth is disabled"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transport mode %q", c.Transport.Mode))
	}
	for i, key := range c.Auth.APIKeys {
		if key.Token == "" || key.Principal == "" {
			errs = append(errs, fmt.Errorf("auth.api_keys[%d] requires token and principal", i))
		}
	}
	if c.DB.Path == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	if c.Journal.Path == "" {
		errs = append(errs, errors.New("journal.path is required"))
	}
	return errors.Join(errs...)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
