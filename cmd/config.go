package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/pandacode-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/pandacode-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set pandacode configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "api_key: %s\n", mask(cfg.APIKey))
		fmt.Fprintf(out, "api_base_url: %s\n", cfg.APIBaseURL)
		fmt.Fprintf(out, "default_model: %s\n", cfg.DefaultModel)
		fmt.Fprintf(out, "provider: %s\n", cfg.Provider)
		fmt.Fprintf(out, "charts_dir: %s\n", cfg.ChartsDir)
		fmt.Fprintf(out, "data_dir: %s\n", cfg.DataDir)
		if cfg.PythonPath != "" {
			fmt.Fprintf(out, "python_path: %s\n", cfg.PythonPath)
		}
		fmt.Fprintf(out, "execute_code: %t\n", cfg.ExecuteCode)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		if cfg.RequestTimeoutSec > 0 {
			fmt.Fprintf(out, "request_timeout_sec: %d\n", cfg.RequestTimeoutSec)
		}
		fmt.Fprintf(out, "history_limit: %d\n", cfg.HistoryLimit)
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "max_upload_mb: %d\n", cfg.MaxUploadMB)
		fmt.Fprintf(out, "rate_limit_per_min: %d\n", cfg.RateLimitPerMin)
		fmt.Fprintf(out, "allowed_origins: %s\n", strings.Join(cfg.AllowedOrigins, ","))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "api_key":
		c.APIKey = val
	case "api_base_url":
		c.APIBaseURL = val
	case "default_model":
		if err := ai.ValidateEnvDefaultModel(val); err != nil {
			return err
		}
		c.DefaultModel = val
	case "provider":
		switch strings.ToLower(val) {
		case ai.ProviderDeepSeek:
			c.Provider = ai.ProviderDeepSeek
		case ai.ProviderOpenAI:
			c.Provider = ai.ProviderOpenAI
		default:
			return fmt.Errorf("invalid provider: %s (use %s)", val, strings.Join(ai.Providers(), " or "))
		}
	case "charts_dir":
		c.ChartsDir = val
	case "data_dir":
		c.DataDir = val
	case "python_path":
		c.PythonPath = val
	case "execute_code":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for execute_code: %v", val)
		}
		c.ExecuteCode = b
	case "listen_addr":
		c.ListenAddr = val
	case "allowed_origins":
		c.AllowedOrigins = strings.Split(val, ",")
	case "http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms",
		"request_timeout_sec", "history_limit", "max_upload_mb", "rate_limit_per_min":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "http_timeout_sec":
			c.HTTPTimeoutSec = i
		case "retry_max_attempts":
			c.RetryMaxAttempts = i
		case "retry_base_delay_ms":
			c.RetryBaseDelayMs = i
		case "retry_max_delay_ms":
			c.RetryMaxDelayMs = i
		case "request_timeout_sec":
			c.RequestTimeoutSec = i
		case "history_limit":
			c.HistoryLimit = i
		case "max_upload_mb":
			c.MaxUploadMB = i
		case "rate_limit_per_min":
			c.RateLimitPerMin = i
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
