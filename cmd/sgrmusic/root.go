package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sglre6355/sgrmusic/internal/bot"
	_ "github.com/sglre6355/sgrmusic/internal/modules/music_player"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "sgrmusic",
		Short:         "Discord music bot backed by Lavalink",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// The env file may set LOG_LEVEL, so it loads before logging is configured.
			if err := loadEnvFile(opts.envFile); err != nil {
				return err
			}
			return setupLogging(logLevel(cmd, opts))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := run(ctx, opts)
			if err != nil {
				slog.Error("bot exited with error", "error", err)
			}
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to a .env file to load")
	cmd.PersistentFlags().StringVar(
		&opts.logLevel,
		"log-level",
		"info",
		"log level (debug, info, warn, error); LOG_LEVEL applies when unset",
	)

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func run(ctx context.Context, opts *rootOptions) error {
	slog.Info("starting sgrmusic", "version", version, "env_file", opts.envFile)

	cfg, err := bot.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	b := bot.NewBot(cfg)
	b.LoadModules()

	if err := b.Start(ctx); err != nil {
		// Release whatever started before the failure
		_ = b.Stop()
		return fmt.Errorf("failed to start bot: %w", err)
	}

	<-ctx.Done()

	slog.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}

	slog.Info("completed bot shutdown")
	return nil
}

// loadEnvFile loads variables from path without overriding the environment.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no env file found", "path", path)
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	slog.Debug("loaded env file", "path", path)
	return nil
}

// setupLogging installs a JSON handler at the given level as the default logger.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// logLevel prefers an explicit --log-level over LOG_LEVEL, which may come from the env file.
func logLevel(cmd *cobra.Command, opts *rootOptions) string {
	if cmd.Flags().Changed("log-level") {
		return opts.logLevel
	}
	return envOr("LOG_LEVEL", opts.logLevel)
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
