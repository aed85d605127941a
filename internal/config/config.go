package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Server  Server  `yaml:"server"`
	Uploads Uploads `yaml:"uploads"`
	LLM     LLM     `yaml:"llm"`
	Scraper Scraper `yaml:"scraper"`
	Logging Logging `yaml:"logging"`
}

type Server struct {
	Port           int    `yaml:"port"`
	FrontendOrigin string `yaml:"frontend_origin"`
}

type Uploads struct {
	Dir                string `yaml:"dir"`
	MaxFileSizeMB      int    `yaml:"max_file_size_mb"`
	SweepIntervalHours int    `yaml:"sweep_interval_hours"`
	MaxAgeHours        int    `yaml:"max_age_hours"`
}

type LLM struct {
	Model           string  `yaml:"model"`
	APIKeyEnv       string  `yaml:"api_key_env"`
	Retries         int     `yaml:"retries"`
	Temperature     float64 `yaml:"temperature"`
	TopP            float64 `yaml:"top_p"`
	TopK            int     `yaml:"top_k"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

type Scraper struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for draftvista.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "draftvista")
}

// DataDir returns the XDG data directory for draftvista.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "draftvista")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/draftvista/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'draftvista init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Server: Server{
			Port:           5001,
			FrontendOrigin: "http://localhost:3000",
		},
		Uploads: Uploads{
			MaxFileSizeMB:      10,
			SweepIntervalHours: 6,
			MaxAgeHours:        24,
		},
		LLM: LLM{
			Model:           "gemini-2.5-flash",
			APIKeyEnv:       "GOOGLE_AI_API_KEY",
			Retries:         2,
			Temperature:     0.7,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
		},
		Scraper: Scraper{
			TimeoutSeconds: 30,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetUploadsDir returns the effective uploads directory from config or the
// XDG data default.
func (c *Config) GetUploadsDir() string {
	if c.Uploads.Dir != "" {
		return c.Uploads.Dir
	}
	return filepath.Join(DataDir(), "uploads")
}

// MaxFileSizeBytes converts the configured megabyte cap into bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Uploads.MaxFileSizeMB) << 20
}

// SweepInterval returns the sweep interval as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Uploads.SweepIntervalHours) * time.Hour
}

// MaxUploadAge returns the maximum upload age as a duration.
func (c *Config) MaxUploadAge() time.Duration {
	return time.Duration(c.Uploads.MaxAgeHours) * time.Hour
}

// ScraperTimeout returns the journal scraper timeout as a duration.
func (c *Config) ScraperTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSeconds) * time.Second
}

// APIKey resolves the model API key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
