package config

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

var sizeRe = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(B|KB|MB|GB|TB)?$`)

// ParseSize converts a human-readable size string (e.g., "1MB", "512KB")
// to bytes. Supports B, KB, MB, GB, TB suffixes (case-insensitive).
// Plain numbers are taken as bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	matches := sizeRe.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid size format: %s (use e.g., '1MB', '512KB')", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in size: %s", s)
	}

	unit := strings.ToUpper(matches[2])
	if unit == "" {
		unit = "B"
	}

	multipliers := map[string]float64{
		"B":  1,
		"KB": 1024,
		"MB": 1024 * 1024,
		"GB": 1024 * 1024 * 1024,
		"TB": 1024 * 1024 * 1024 * 1024,
	}

	return int64(value * multipliers[unit]), nil
}

type Config struct {
	Listen      string            `yaml:"listen"`
	Database    DatabaseConfig    `yaml:"database"`
	TextLog     TextLogConfig     `yaml:"text_log"`
	HTTP        HTTPConfig        `yaml:"http"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Auth        AuthConfig        `yaml:"auth"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	TLS         TLSConfig         `yaml:"tls"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or mysql
	DSN    string `yaml:"dsn"`
}

type TextLogConfig struct {
	Path string `yaml:"path"` // relative to the working directory
}

type HTTPConfig struct {
	MaxBodySize    int64  `yaml:"-"`
	MaxBodySizeRaw string `yaml:"max_body_size"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type AuthConfig struct {
	// bcrypt hash of the bearer token required on ingestion; empty disables auth
	IngestTokenHash string `yaml:"ingest_token_hash"`
	// bcrypt hash of the bearer token for /admin/api; falls back to the ingest hash
	AdminTokenHash string `yaml:"admin_token_hash"`
}

// AdminHash is the hash guarding the admin API. Empty means no token is configured.
func (a AuthConfig) AdminHash() string {
	if a.AdminTokenHash != "" {
		return a.AdminTokenHash
	}
	return a.IngestTokenHash
}

type DiagnosticsConfig struct {
	Level     string        `yaml:"level"`
	Retention time.Duration `yaml:"retention"`
}

type TLSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cert    string `yaml:"cert"`
	Key     string `yaml:"key"`
}

var C Config

// Load fills C from defaults, config.yaml and the environment, in that order.
// A .env file, if present, is loaded into the environment first.
func Load() error {
	C = Config{
		Listen: ":8000",
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "netlog.db",
		},
		TextLog: TextLogConfig{
			Path: "log_record.txt",
		},
		HTTP: HTTPConfig{
			MaxBodySize: 1024 * 1024,
		},
		RateLimit: RateLimitConfig{
			Requests: 120,
			Window:   time.Minute,
		},
		Diagnostics: DiagnosticsConfig{
			Level:     "warn",
			Retention: 48 * time.Hour,
		},
	}

	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("error while loading .env file: %v", err)
	}

	if data, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &C); err != nil {
			return err
		}
	}

	if C.HTTP.MaxBodySizeRaw != "" {
		size, err := ParseSize(C.HTTP.MaxBodySizeRaw)
		if err != nil {
			return err
		}
		C.HTTP.MaxBodySize = size
	}

	// Environment overrides
	if v := os.Getenv("LISTEN"); v != "" {
		C.Listen = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		C.Database.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		C.Database.DSN = v
	} else if host := os.Getenv("DB_HOST"); host != "" {
		C.Database.Driver = "mysql"
		C.Database.DSN = MySQLDSN(os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, os.Getenv("DB_NAME"))
	}
	if v := os.Getenv("TEXT_LOG_PATH"); v != "" {
		C.TextLog.Path = v
	}
	if v := os.Getenv("HTTP_MAX_BODY_SIZE"); v != "" {
		if size, err := ParseSize(v); err == nil {
			C.HTTP.MaxBodySize = size
		}
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_REQUESTS"); ok {
		C.RateLimit.Requests = cast.ToInt(v)
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			C.RateLimit.Window = d
		}
	}
	if v := os.Getenv("INGEST_TOKEN_HASH"); v != "" {
		C.Auth.IngestTokenHash = v
	}
	if v := os.Getenv("ADMIN_TOKEN_HASH"); v != "" {
		C.Auth.AdminTokenHash = v
	}
	if v := os.Getenv("DIAGNOSTICS_LEVEL"); v != "" {
		C.Diagnostics.Level = v
	}
	if v := os.Getenv("DIAGNOSTICS_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			C.Diagnostics.Retention = d
		}
	}
	if v, ok := os.LookupEnv("TLS_ENABLED"); ok {
		C.TLS.Enabled = cast.ToBool(v)
	}
	if v := os.Getenv("TLS_CERT"); v != "" {
		C.TLS.Cert = v
	}
	if v := os.Getenv("TLS_KEY"); v != "" {
		C.TLS.Key = v
	}

	return nil
}

// MySQLDSN builds a go-sql-driver DSN. parseTime is required to scan
// timeStamp into time.Time.
func MySQLDSN(user, password, host, name string) string {
	if !strings.Contains(host, ":") {
		host += ":3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC", user, password, host, name)
}
