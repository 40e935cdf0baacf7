package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/rabbithole"
	"github.com/aretw0/rabbithole/internal/platform"
)

var (
	verbose    bool
	configPath string
	preload    []string
	strict     bool
	database   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rabbithole",
	Short: "A record store with live, incrementally refreshed wiki widgets",
	Long: `Rabbithole loads records from wiki files, renders them to HTML and keeps
the rendered documents in sync with the store. Sliders persist their
open/closed state as records of their own.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: nearest rabbithole.yaml)")
	rootCmd.PersistentFlags().StringSliceVarP(&preload, "load", "l", nil, "Files to import before running the command")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Keep JSON/YAML numbers exact")
	rootCmd.PersistentFlags().StringVar(&database, "db", "", "SQLite database persisting records between runs")
}

// openWiki builds a wiki from the configuration file and flags, then imports
// the preload files. The caller closes it.
func openWiki(ctx context.Context) (*rabbithole.Wiki, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	opts := append(cfg.Options(), rabbithole.WithLogger(slog.Default()))
	if strict {
		opts = append(opts, rabbithole.WithStrict(true))
	}
	if database != "" {
		opts = append(opts, rabbithole.WithDatabase(database))
	}

	wiki, err := rabbithole.New(opts...)
	if err != nil {
		return nil, err
	}

	files := append(cfg.PreloadFiles(), preload...)
	if len(files) > 0 {
		if err := wiki.Load(ctx, files...); err != nil {
			_ = wiki.Close()
			return nil, err
		}
	}
	return wiki, nil
}

// withWiki opens the wiki, runs fn and closes the wiki before returning, so
// a failing command still releases the store.
func withWiki(ctx context.Context, fn func(wiki *rabbithole.Wiki) error) error {
	wiki, err := openWiki(ctx)
	if err != nil {
		return fmt.Errorf("initializing wiki: %w", err)
	}
	defer func() {
		if err := wiki.Close(); err != nil {
			slog.Warn("close wiki", "error", err)
		}
	}()
	return fn(wiki)
}

func readConfig() (platform.FileConfig, error) {
	path := configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return platform.FileConfig{}, err
		}
		found, err := platform.FindConfig(wd)
		if errors.Is(err, platform.ErrConfigNotFound) {
			return platform.FileConfig{}, nil
		}
		if err != nil {
			return platform.FileConfig{}, err
		}
		path = found
	}
	slog.Debug("using config", "path", path)
	return platform.LoadConfig(path)
}
