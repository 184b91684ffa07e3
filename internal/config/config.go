package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIKey       string `mapstructure:"api_key" yaml:"api_key"`
	APIBaseURL   string `mapstructure:"api_base_url" yaml:"api_base_url"`
	DefaultModel string `mapstructure:"default_model" yaml:"default_model"`
	// Provider selects the chat runtime: "deepseek" (built-in client) or "openai" (SDK).
	Provider string `mapstructure:"provider" yaml:"provider"`

	ChartsDir string `mapstructure:"charts_dir" yaml:"charts_dir"`
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir"`

	// Code execution
	PythonPath  string `mapstructure:"python_path" yaml:"python_path"`
	ExecuteCode bool   `mapstructure:"execute_code" yaml:"execute_code"`

	// HTTP/Retry configuration
	HTTPTimeoutSec    int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts  int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs  int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs   int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
	RequestTimeoutSec int `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`

	// History and backend
	HistoryLimit int    `mapstructure:"history_limit" yaml:"history_limit"`
	ListenAddr   string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB  int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// Requests per minute per client IP on /api/generate; 0 disables the limit.
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min" yaml:"rate_limit_per_min"`
	AllowedOrigins  []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Environment variable names the DeepSeek tooling has always used.
const (
	EnvAPIKey  = "DEEPSEEK_API_KEY"
	EnvAPIBase = "DEEPSEEK_API_BASE"
)

// configDir returns ~/.pandacode.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".pandacode"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.pandacode/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment,
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Overload(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command-line flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("PANDACODE")
	v.AutomaticEnv()
	// The credentials keep their historical names as well as the prefixed ones.
	_ = v.BindEnv("api_key", "PANDACODE_API_KEY", EnvAPIKey)
	_ = v.BindEnv("api_base_url", "PANDACODE_API_BASE_URL", EnvAPIBase)

	v.SetDefault("api_key", "")
	v.SetDefault("api_base_url", "")
	v.SetDefault("default_model", "deepseek-chat")
	v.SetDefault("provider", "deepseek")
	v.SetDefault("charts_dir", "")
	v.SetDefault("data_dir", "")
	v.SetDefault("python_path", "")
	v.SetDefault("execute_code", true)
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("request_timeout_sec", 0)
	v.SetDefault("history_limit", 15)
	v.SetDefault("listen_addr", ":3001")
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("rate_limit_per_min", 30)
	v.SetDefault("allowed_origins", []string{"*"})

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working dir: %w", err)
	}
	// Charts land next to the caller, like the backend that serves them expects.
	if c.ChartsDir == "" {
		c.ChartsDir = filepath.Join(wd, "charts")
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(wd, "data")
	}
	return &c, nil
}
