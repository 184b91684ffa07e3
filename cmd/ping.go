package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/pandacode-cli/internal/ai"
	"github.com/spf13/cobra"
)

var (
	pingModel   string
	pingAPIKey  string
	pingAPIBase string
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the configured chat endpoint answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		key, base, model := c.APIKey, c.APIBaseURL, c.DefaultModel
		if pingAPIKey != "" {
			key = pingAPIKey
		}
		if pingAPIBase != "" {
			base = pingAPIBase
		}
		if pingModel != "" {
			model = pingModel
		}
		if model == "" {
			model = ai.DefaultModel
		}
		if key == "" || base == "" {
			return errors.New("API key or base URL not found. Provide them via flags or environment variables")
		}
		rt, err := ai.MustRuntime(c.Provider, ai.RuntimeConfig{
			APIKey:      key,
			BaseURL:     base,
			HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
			RetryMax:    1,
		})
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		start := time.Now()
		resp, err := rt.Generate(ctx, ai.GenerateRequest{
			Model:     model,
			Messages:  []ai.Message{{Role: "user", Content: "Reply with the single word: pong"}},
			MaxTokens: 16,
		})
		if err != nil {
			return describeProviderError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s answered in %s: %s\n", model, time.Since(start).Round(time.Millisecond), strings.TrimSpace(resp.Content()))
		if resp.RequestID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  request id: %s\n", resp.RequestID)
		}
		return nil
	},
}

// describeProviderError adds a hint for the common failure classes.
func describeProviderError(err error) error {
	var (
		authErr  *ai.AuthError
		rateErr  *ai.RateLimitError
		quotaErr *ai.QuotaExceededError
		modelErr *ai.ModelNotFoundError
		netErr   *ai.UnreachableError
	)
	switch {
	case errors.As(err, &authErr):
		return fmt.Errorf("%w (check the API key)", err)
	case errors.As(err, &rateErr):
		return fmt.Errorf("%w (slow down or raise --retry-max)", err)
	case errors.As(err, &quotaErr):
		return fmt.Errorf("%w (top up the account balance)", err)
	case errors.As(err, &modelErr):
		return fmt.Errorf("%w (see `pandacode models`)", err)
	case errors.As(err, &netErr):
		return fmt.Errorf("%w (check the base URL and network)", err)
	default:
		return err
	}
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().StringVar(&pingModel, "model-name", "", "model id to ping (default from config)")
	pingCmd.Flags().StringVar(&pingAPIKey, "api-key", "", "API key (overrides environment)")
	pingCmd.Flags().StringVar(&pingAPIBase, "api-base-url", "", "API base URL (overrides environment)")
}
