package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime configuration of the reading tracker service.
type Config struct {
	HTTPPort    int
	SQLiteDSN   string
	TokenSecret string
	SessionTTL  time.Duration
}

// fileConfig mirrors the optional YAML configuration file. Every field is a
// pointer so the loader can tell "absent" from "zero".
type fileConfig struct {
	HTTPPort   *int    `yaml:"http_port"`
	SQLiteDSN  *string `yaml:"sqlite_dsn"`
	SessionTTL *string `yaml:"session_ttl"`
}

// Load assembles configuration from an optional YAML file (pointed to by
// READINGNOOK_CONFIG) and the process environment. Environment variables
// override file values. The loader applies defaults for optional fields and
// aggregates every missing or invalid entry into a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:readingnook.db?_foreign_keys=on",
		SessionTTL: 7 * 24 * time.Hour,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if path := strings.TrimSpace(os.Getenv("READINGNOOK_CONFIG")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if portValue := strings.TrimSpace(os.Getenv("READINGNOOK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "READINGNOOK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("READINGNOOK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("READINGNOOK_TOKEN_SECRET")); secret == "" {
		missing = append(missing, "READINGNOOK_TOKEN_SECRET")
	} else {
		cfg.TokenSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("READINGNOOK_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "READINGNOOK_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.HTTPPort != nil {
		if *file.HTTPPort <= 0 {
			return fmt.Errorf("config file %s: http_port must be positive", path)
		}
		cfg.HTTPPort = *file.HTTPPort
	}
	if file.SQLiteDSN != nil && strings.TrimSpace(*file.SQLiteDSN) != "" {
		cfg.SQLiteDSN = strings.TrimSpace(*file.SQLiteDSN)
	}
	if file.SessionTTL != nil {
		ttl, err := time.ParseDuration(strings.TrimSpace(*file.SessionTTL))
		if err != nil || ttl <= 0 {
			return fmt.Errorf("config file %s: session_ttl must be a positive duration", path)
		}
		cfg.SessionTTL = ttl
	}

	return nil
}
