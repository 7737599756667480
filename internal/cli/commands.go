package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/data"
	"github.com/KotFed0t/portfolio_mood_light/data/cache"
	"github.com/KotFed0t/portfolio_mood_light/data/repository"
	"github.com/KotFed0t/portfolio_mood_light/internal/report"
	"github.com/KotFed0t/portfolio_mood_light/internal/report/consoleReport"
	"github.com/KotFed0t/portfolio_mood_light/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/portfolio_mood_light/internal/scheduler"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

// NewRootCmd builds the command tree. Config is read from the environment before any command runs.
func NewRootCmd() *cobra.Command {
	cfg := &config.Config{}

	var (
		holdingsFile string
		dryRun       bool
	)

	rootCmd := &cobra.Command{
		Use:           "portfolio_mood_light",
		Short:         "Shows how your portfolio is doing today on a smart light",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(func(c *config.Config) {
				if holdingsFile != "" {
					c.Holdings.File = holdingsFile
				}
				if dryRun {
					c.Light.Driver = "log"
				}
			})
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			*cfg = *loaded

			setupLogger(cfg)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd.Context(), cfg, cmd.OutOrStdout(), appOptions{})
		},
	}

	rootCmd.PersistentFlags().StringVar(&holdingsFile, "holdings", "", "holdings file (.json or .toml), overrides HOLDINGS_FILE")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "log light commands instead of sending them")

	rootCmd.AddCommand(newRunCmd(cfg))
	rootCmd.AddCommand(newOnceCmd(cfg))
	rootCmd.AddCommand(newCheckCmd(cfg))
	rootCmd.AddCommand(newExportCmd(cfg))
	rootCmd.AddCommand(newLastCmd(cfg))

	return rootCmd
}

func newRunCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Refresh the light every REFRESH_INTERVAL until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd.Context(), cfg, cmd.OutOrStdout(), appOptions{})
		},
	}
}

func newOnceCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg, cmd.OutOrStdout(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			_, err = a.service.RunOnce(cmd.Context())
			return err
		},
	}
}

func newCheckCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the holdings file and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			holdings, err := repository.NewHoldingsFile(cfg).Load(cmd.Context())
			if err != nil {
				return err
			}

			invested := decimal.Zero
			symbols := make([]string, 0, len(holdings))
			for _, h := range holdings {
				invested = invested.Add(h.Invested())
				symbols = append(symbols, h.Symbol)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d holdings, invested %s\n%s\n",
				cfg.Holdings.File, len(holdings), report.Money(invested), strings.Join(symbols, ", "))
			return err
		},
	}
}

func newExportCmd(cfg *config.Config) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run a single cycle without touching the light and write it to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Light.Driver = "log"

			// the export must not publish over the result of a running loop
			a, err := newApp(cmd.Context(), cfg, cmd.OutOrStdout(), appOptions{consoleOnly: true})
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.service.RunOnce(cmd.Context())
			if err != nil {
				return err
			}

			fileBytes, ext, err := xlsxGenerator.New().Generate(cmd.Context(), result)
			if err != nil {
				return err
			}

			if !strings.HasSuffix(out, ext) {
				out += ext
			}

			if err := os.WriteFile(out, fileBytes, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "written %s\n", out)
			return err
		},
	}

	cmd.Flags().StringVar(&out, "out", "portfolio.xlsx", "output file")

	return cmd
}

func newLastCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Print the last cycle result published to redis by a running loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Redis.Host == "" {
				return errors.New("REDIS_HOST is not set")
			}

			rdb, err := data.NewRedisClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rdb.Close()

			result, err := cache.NewSnapshotCache(rdb, cfg).Latest(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), consoleReport.Render(result))
			return err
		},
	}
}

// runLoop blocks until ctx is cancelled. The cycle in flight, if any, gets its context cancelled and
// no new cycle starts after that.
func runLoop(ctx context.Context, cfg *config.Config, out io.Writer, opts appOptions) error {
	a, err := newApp(ctx, cfg, out, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := scheduler.New(shutdownTimeout)
	if err != nil {
		return err
	}

	err = sched.NewIntervalJob("refresh portfolio mood", a.service.Tick, cfg.RefreshInterval, true)
	if err != nil {
		return err
	}

	if a.statusServer != nil {
		a.statusServer.Start()
	}

	sched.Start()
	slog.Info("refresh loop started", slog.Duration("interval", cfg.RefreshInterval))

	<-ctx.Done()
	slog.Info("stop requested")

	if err := sched.Stop(); err != nil {
		slog.Error("scheduler stop", slog.String("err", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.statusServer != nil {
		if err := a.statusServer.Stop(shutdownCtx); err != nil {
			slog.Error("status server stop", slog.String("err", err.Error()))
		}
	}

	if err := a.service.Shutdown(shutdownCtx); err != nil {
		slog.Error("light shutdown", slog.String("err", err.Error()))
	}

	slog.Info("refresh loop stopped", slog.Int("cycles", a.service.State().Cycles))

	return nil
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
