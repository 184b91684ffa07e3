package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/pandacode-cli/internal/history"
	"github.com/KaramelBytes/pandacode-cli/internal/runner"
	"github.com/KaramelBytes/pandacode-cli/internal/server"
	"github.com/KaramelBytes/pandacode-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	serveAddr       string
	serveTimeoutSec int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP backend used by the web frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		for _, dir := range []string{c.ChartsDir, c.DataDir} {
			if err := utils.EnsureDir(dir); err != nil {
				return err
			}
		}
		srv, err := server.New(server.Options{
			Runner:          runner.New(c, logger),
			History:         history.Open(c.DataDir, c.HistoryLimit, logger),
			ChartsDir:       c.ChartsDir,
			MaxUploadBytes:  int64(c.MaxUploadMB) << 20,
			RequestTimeout:  time.Duration(serveTimeoutSec) * time.Second,
			RateLimitPerMin: c.RateLimitPerMin,
			AllowedOrigins:  c.AllowedOrigins,
			Logger:          logger,
		})
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "listen address (default from config, :3001)")
	serveCmd.Flags().IntVar(&serveTimeoutSec, "timeout-sec", 120, "per-request timeout in seconds")
}
