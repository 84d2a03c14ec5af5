package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Trial   TrialConfig   `yaml:"trial" envconfig:"TRIAL"`
	Upload  UploadConfig  `yaml:"upload" envconfig:"UPLOAD"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"25"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system path configuration.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	UploadsDir string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR" default:"data/uploads"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"data/reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// TrialConfig contains trial gating configuration.
type TrialConfig struct {
	Duration  time.Duration `yaml:"duration" envconfig:"DURATION" default:"168h"`
	StateFile string        `yaml:"state_file" envconfig:"STATE_FILE" default:"data/trial.json"`
	// ActivationDigest is the hex PBKDF2 digest an activation code is checked
	// against. Empty means activation is not available.
	ActivationDigest string `yaml:"activation_digest" envconfig:"ACTIVATION_DIGEST"`
	ActivationSalt   string `yaml:"activation_salt" envconfig:"ACTIVATION_SALT"`
}

// UploadConfig bounds accepted upload files.
type UploadConfig struct {
	MaxSizeBytes int64 `yaml:"max_size_bytes" envconfig:"MAX_SIZE_BYTES" default:"52428800"`
}

// Load loads configuration from environment variables (prefix KLV), layered
// over an optional YAML config file.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom is Load with an explicit config file path, for tests.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Environment overrides the file; envconfig also fills defaults for
	// anything still unset.
	if err := envconfig.Process("KLV", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if p := os.Getenv("KLV_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Trial.Duration <= 0 {
		return fmt.Errorf("trial duration must be positive, got %s", c.Trial.Duration)
	}
	if c.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("upload max size must be positive, got %d", c.Upload.MaxSizeBytes)
	}
	return nil
}

// NewPaths derives the resolved Paths from the configuration. Fields left
// blank fall back to the working-directory defaults.
func (c *Config) NewPaths() *Paths {
	p := DefaultPaths()
	if c.Paths.DataDir != "" {
		p.DataDir = c.Paths.DataDir
	}
	if c.Paths.UploadsDir != "" {
		p.UploadsDir = c.Paths.UploadsDir
	}
	if c.Paths.ReportsDir != "" {
		p.ReportsDir = c.Paths.ReportsDir
	}
	if c.Paths.LogsDir != "" {
		p.LogsDir = c.Paths.LogsDir
	}
	return p
}
