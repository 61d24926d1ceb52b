package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server     ServerConfig     `koanf:"server"`
	Compliance ComplianceConfig `koanf:"compliance"`
	Campaign   CampaignConfig   `koanf:"campaign"`
	Provider   ProviderConfig   `koanf:"provider"`
	EventLog   EventLogConfig   `koanf:"event_log"`
	DNC        DNCConfig        `koanf:"dnc"`
	Ledger     LedgerConfig     `koanf:"ledger"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	Security   SecurityConfig   `koanf:"security"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// ComplianceConfig carries the legal calling window. The gate fails closed,
// so a malformed value here blocks every call rather than allowing one.
type ComplianceConfig struct {
	CallHoursStart string        `koanf:"call_hours_start" validate:"required"` // HH:MM, 24h
	CallHoursEnd   string        `koanf:"call_hours_end" validate:"required"`   // HH:MM, 24h
	Timezone       string        `koanf:"timezone" validate:"required"`         // IANA name
	MaxAttempts    int           `koanf:"max_attempts" validate:"min=1"`
	RetryDelay     time.Duration `koanf:"retry_delay"`
}

type CampaignConfig struct {
	// PacingDelay is the minimum spacing between consecutive dispatches,
	// not a best-effort hint.
	PacingDelay time.Duration `koanf:"pacing_delay"`
}

type ProviderConfig struct {
	BaseURL       string        `koanf:"base_url" validate:"required,url"`
	APIKey        string        `koanf:"api_key"`
	FromNumber    string        `koanf:"from_number" validate:"required"`
	CallbackURL   string        `koanf:"callback_url" validate:"required,url"`
	SubmitTimeout time.Duration `koanf:"submit_timeout"`
}

type EventLogConfig struct {
	Capacity int    `koanf:"capacity" validate:"min=1"`
	Backend  string `koanf:"backend" validate:"oneof=file postgres"`
	FilePath string `koanf:"file_path"`
}

type DNCConfig struct {
	Backend  string `koanf:"backend" validate:"oneof=file redis"`
	FilePath string `koanf:"file_path"`
}

type LedgerConfig struct {
	Path string `koanf:"path"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL      string `koanf:"url"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type SecurityConfig struct {
	JWTSecret   string        `koanf:"jwt_secret"`
	TokenExpiry time.Duration `koanf:"token_expiry"`
}

type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	OTLPEndpoint string `koanf:"otlp_endpoint"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Compliance: ComplianceConfig{
			CallHoursStart: "09:00",
			CallHoursEnd:   "17:00",
			Timezone:       "America/New_York",
			MaxAttempts:    3,
			RetryDelay:     time.Hour,
		},
		Campaign: CampaignConfig{
			PacingDelay: 5 * time.Second,
		},
		Provider: ProviderConfig{
			BaseURL:       "https://api.callprovider.example.com",
			FromNumber:    "+15550000000",
			CallbackURL:   "http://localhost:8080/webhook",
			SubmitTimeout: 30 * time.Second,
		},
		EventLog: EventLogConfig{
			Capacity: 1000,
			Backend:  "file",
			FilePath: "data/webhook_events.jsonl",
		},
		DNC: DNCConfig{
			Backend:  "file",
			FilePath: "data/do_not_call.jsonl",
		},
		Ledger: LedgerConfig{
			Path: "data/contacts.csv",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Security: SecurityConfig{
			TokenExpiry: 24 * time.Hour,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Config file is optional.
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	// Override with environment variables.
	if err := k.Load(env.Provider("VOB_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "VOB_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
