package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"buildwatchdog/internal/models"
)

// Fetch sources.
const (
	SourceCLI = "cli"
	SourceSDK = "sdk"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BUILDWATCHDOG_"

// Config represents configuration data for one monitoring run.
type Config struct {
	BuildID             string            `yaml:"build_id"`
	IntervalSeconds     int               `yaml:"interval_seconds"`
	Notify              models.NotifyMode `yaml:"notify"`
	Profile             string            `yaml:"profile"`
	Region              string            `yaml:"region"`
	Source              string            `yaml:"source"`
	AWSCommand          string            `yaml:"aws_command"`
	Endpoint            string            `yaml:"endpoint"`
	FetchTimeoutSeconds int               `yaml:"fetch_timeout_seconds"`
	SettleSeconds       int               `yaml:"settle_seconds"`
	FeedAddr            string            `yaml:"feed_addr"`
	LogLevel            string            `yaml:"log_level"`
}

// DefaultConfig returns sensible defaults in case no configuration file is provided.
func DefaultConfig() Config {
	return Config{
		IntervalSeconds:     10,
		Notify:              models.NotifyBoth,
		Source:              SourceCLI,
		AWSCommand:          "aws",
		FetchTimeoutSeconds: 30,
		SettleSeconds:       3,
		LogLevel:            "info",
	}
}

// Load reads configuration from yaml file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Notify == "" {
		cfg.Notify = models.NotifyBoth
	}
	if cfg.Source == "" {
		cfg.Source = SourceCLI
	}
	if cfg.AWSCommand == "" {
		cfg.AWSCommand = DefaultConfig().AWSCommand
	}
	return cfg, nil
}

// LoadEnv loads a .env file if one exists and applies process environment
// overrides on top of cfg.
func LoadEnv(cfg Config) (Config, error) {
	_ = godotenv.Load()
	return ApplyEnv(cfg, os.LookupEnv)
}

// ApplyEnv overrides cfg with BUILDWATCHDOG_* values found through lookup.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) (string, bool) {
		value, ok := lookup(EnvPrefix + key)
		value = strings.TrimSpace(value)
		return value, ok && value != ""
	}
	getInt := func(key string, dst *int) error {
		raw, ok := get(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}

	if v, ok := get("BUILD_ID"); ok {
		cfg.BuildID = v
	}
	if v, ok := get("NOTIFY"); ok {
		cfg.Notify = models.NotifyMode(strings.ToLower(v))
	}
	if v, ok := get("PROFILE"); ok {
		cfg.Profile = v
	}
	if v, ok := get("REGION"); ok {
		cfg.Region = v
	}
	if v, ok := get("SOURCE"); ok {
		cfg.Source = strings.ToLower(v)
	}
	if v, ok := get("AWS_COMMAND"); ok {
		cfg.AWSCommand = v
	}
	if v, ok := get("ENDPOINT"); ok {
		cfg.Endpoint = v
	}
	if v, ok := get("FEED_ADDR"); ok {
		cfg.FeedAddr = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if err := getInt("INTERVAL", &cfg.IntervalSeconds); err != nil {
		return Config{}, err
	}
	if err := getInt("FETCH_TIMEOUT", &cfg.FetchTimeoutSeconds); err != nil {
		return Config{}, err
	}
	if err := getInt("SETTLE", &cfg.SettleSeconds); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BuildID) == "" {
		return errors.New("build id is required")
	}
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("interval must be a positive number of seconds, got %d", c.IntervalSeconds)
	}
	if !c.Notify.Valid() {
		return fmt.Errorf("notify must be one of terminal, desktop, both, got %q", c.Notify)
	}
	if c.Source != SourceCLI && c.Source != SourceSDK {
		return fmt.Errorf("source must be %q or %q, got %q", SourceCLI, SourceSDK, c.Source)
	}
	if c.Source == SourceCLI && strings.TrimSpace(c.AWSCommand) == "" {
		return errors.New("aws_command is required for the cli source")
	}
	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch_timeout_seconds must be positive, got %d", c.FetchTimeoutSeconds)
	}
	if c.SettleSeconds <= 0 {
		return fmt.Errorf("settle_seconds must be positive, got %d", c.SettleSeconds)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (log.Level, error) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Interval is the polling interval.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// FetchTimeout bounds a single status query.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// SettleDelay is the pause before the confirmatory fetch.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleSeconds) * time.Second
}
