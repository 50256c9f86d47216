package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Run           RunConfig           `yaml:"run"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
	// NkeySeedFile points at an nkey seed used to authenticate against a
	// hardened NATS deployment. Empty means plain connection.
	NkeySeedFile string `yaml:"nkey_seed_file"`
}

// RunConfig holds the knobs for the run validation and lifecycle engine.
type RunConfig struct {
	// ResetDay/ResetHourUTC define the recurring game-week boundary.
	// The period a run belongs to is derived from these, not the calendar week.
	ResetDay     string `yaml:"reset_day"`
	ResetHourUTC int    `yaml:"reset_hour_utc"`

	// CorrectionThreshold is the minimum fuzzy-match score (0-100) for an
	// OCR name to be auto-corrected to a vocabulary entry.
	CorrectionThreshold int `yaml:"correction_threshold"`

	// DecisionTimeout is how long a pending run waits for a confirm/cancel
	// before it is auto-rejected.
	DecisionTimeout time.Duration `yaml:"decision_timeout"`

	// SubmitInterval/SubmitBurst throttle per-submitter batch submissions.
	SubmitInterval time.Duration `yaml:"submit_interval"`
	SubmitBurst    int           `yaml:"submit_burst"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides and defaults.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_NKEY_SEED_FILE"); v != "" {
		cfg.NATS.NkeySeedFile = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("GAME_RESET_DAY"); v != "" {
		cfg.Run.ResetDay = v
	}
	if v := os.Getenv("GAME_RESET_HOUR_UTC"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			cfg.Run.ResetHourUTC = h
		}
	}
	if v := os.Getenv("CORRECTION_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Run.CorrectionThreshold = n
		}
	}
	if v := os.Getenv("DECISION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Run.DecisionTimeout = d
		}
	}

	applyDefaults(&cfg)

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required (config file or DATABASE_URL)")
	}
	if _, err := cfg.Run.ResetWeekday(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.Run.ResetDay == "" {
		cfg.Run.ResetDay = "monday"
	}
	if cfg.Run.CorrectionThreshold == 0 {
		cfg.Run.CorrectionThreshold = 85
	}
	if cfg.Run.DecisionTimeout == 0 {
		cfg.Run.DecisionTimeout = 300 * time.Second
	}
	if cfg.Run.SubmitInterval == 0 {
		cfg.Run.SubmitInterval = 10 * time.Second
	}
	if cfg.Run.SubmitBurst == 0 {
		cfg.Run.SubmitBurst = 3
	}
	if cfg.Observability.MetricsAddress == "" {
		cfg.Observability.MetricsAddress = ":8081"
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResetWeekday parses the configured reset day into a time.Weekday.
func (rc RunConfig) ResetWeekday() (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(rc.ResetDay))]
	if !ok {
		return 0, fmt.Errorf("invalid reset_day %q", rc.ResetDay)
	}
	return day, nil
}
