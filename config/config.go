package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	Content ContentConfig `yaml:"content"`
	Admin   AdminConfig   `yaml:"admin"`
}

// HTTPConfig holds the listener and request-shaping settings.
type HTTPConfig struct {
	Address         string        `yaml:"address"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	SubmissionRate  float64       `yaml:"submission_rate"`
	SubmissionBurst int           `yaml:"submission_burst"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig locates the dataset file and its backups.
type StoreConfig struct {
	Path       string `yaml:"path"`
	BackupDir  string `yaml:"backup_dir"`
	MaxBackups int    `yaml:"max_backups"`
}

// ContentConfig locates the attachment content directory.
type ContentConfig struct {
	Dir string `yaml:"dir"`
}

// AdminConfig holds admin authentication settings.
type AdminConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// defaults when the file is absent. Environment variables override either
// source.
func LoadConfig(filename string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			MaxUploadBytes:  32 << 20,
			SubmissionRate:  2,
			SubmissionBurst: 5,
			MetricsEnabled:  true,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Path:       "data/dataset.json",
			BackupDir:  "data/backups",
			MaxBackups: 20,
		},
		Content: ContentConfig{
			Dir: "data/content",
		},
		Admin: AdminConfig{
			TokenTTL: 12 * time.Hour,
		},
	}
}

// --- OVERRIDE WITH ENV VARS IF PRESENT ---
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WINGSHOT_HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("WINGSHOT_DATA_FILE"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("WINGSHOT_BACKUP_DIR"); v != "" {
		cfg.Store.BackupDir = v
	}
	if v := os.Getenv("WINGSHOT_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Store.MaxBackups = n
		}
	}
	if v := os.Getenv("WINGSHOT_CONTENT_DIR"); v != "" {
		cfg.Content.Dir = v
	}
	if v := os.Getenv("WINGSHOT_ADMIN_SECRET"); v != "" {
		cfg.Admin.JWTSecret = v
	}
	if v := os.Getenv("WINGSHOT_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Admin.TokenTTL = d
		}
	}
}
