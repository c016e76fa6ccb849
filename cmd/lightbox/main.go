package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/pflag"
	"libdb.so/lightbox"
)

var (
	config  = "lightbox.toml"
	verbose = false
	reset   = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.BoolVar(&reset, "reset", reset, "reset the settings to their defaults")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := readConfig()
	if err != nil {
		return err
	}

	if err := cfg.ApplyEnv(ctx, envconfig.OsLookuper()); err != nil {
		return err
	}

	var opts []lightbox.Option
	if reset {
		opts = append(opts, lightbox.WithReset())
	}

	d, err := lightbox.NewDaemon(cfg, slog.Default(), opts...)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("daemon failed: %w", err)
	}

	return nil
}

func readConfig() (*lightbox.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		// Without a config file, everything comes from the defaults and the
		// environment.
		if errors.Is(err, fs.ErrNotExist) && !pflag.CommandLine.Changed("config") {
			slog.Info("no config file, using defaults", "path", config)
			return lightbox.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return lightbox.ParseConfig(f)
}
