package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"posturetrack/internal/bootstrap"
	"posturetrack/internal/feed"
	"posturetrack/internal/platform/config"
	"posturetrack/internal/platform/telemetry"
	"posturetrack/internal/ui/dashboard"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "posturetrack",
		Short:         "Posture monitoring server and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (optional)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newRecentCmd(&configPath))
	root.AddCommand(newLatestCmd(&configPath))
	root.AddCommand(newDashboardCmd())
	root.AddCommand(newFeedCmd())
	return root
}

func loadApp(configPath string) (*bootstrap.App, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	app, err := bootstrap.New(cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	return app, cfg, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the posture tracking server",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			shutdown, err := telemetry.Setup(ctx, "posturetrack", cfg.OTLPEndpoint)
			if err != nil {
				return fmt.Errorf("setup telemetry: %w", err)
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(flushCtx)
			}()

			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			return bootstrap.RunServer(ctx, cfg, app)
		},
	}
}

func newRecentCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Print the most recent posture records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			records, err := app.Posture.Recent(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no records")
				return nil
			}
			for _, r := range records {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", r.ID, r.Status, r.Timestamp)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "number of records")
	return cmd
}

func newLatestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Print the latest posture record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, _, err := loadApp(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			r, err := app.Posture.Latest(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", r.ID, r.Status, r.Timestamp)
			return nil
		},
	}
}

func newDashboardCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Watch live posture updates in the terminal",
		RunE: func(_ *cobra.Command, _ []string) error {
			return dashboard.Run(url)
		},
	}
	cmd.Flags().StringVar(&url, "url", "ws://localhost:8000/ws/dashboard", "dashboard WebSocket URL")
	return cmd
}

func newFeedCmd() *cobra.Command {
	var (
		url      string
		interval time.Duration
		every    int
		count    int
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Stream synthetic posture frames to a running server",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return feed.Run(ctx, feed.Options{
				URL:      url,
				Interval: interval,
				Every:    every,
				Count:    count,
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "ws://localhost:8000/ws/posture", "producer WebSocket URL")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "time between captured frames")
	cmd.Flags().IntVar(&every, "every", 1, "send one frame out of every N captured")
	cmd.Flags().IntVar(&count, "count", 0, "stop after N captured frames (0 = run until interrupted)")
	return cmd
}
