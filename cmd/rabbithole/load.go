package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/rabbithole"
	"github.com/aretw0/rabbithole/pkg/adapters/lifecycle"
)

var (
	loadWatch bool
)

var loadCmd = &cobra.Command{
	Use:   "load [files...]",
	Short: "Import records from files",
	Long: `Import records from one or more files, one after another. Supported formats
are TiddlyWiki HTML, .tid, .json, .yaml, .md and .csv; other files become a
single record. With --watch the files are re-imported whenever they change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withWiki(ctx, func(wiki *rabbithole.Wiki) error {
			if err := wiki.Load(ctx, args...); err != nil {
				return fmt.Errorf("loading files: %w", err)
			}
			fmt.Printf("Loaded %d records.\n", len(wiki.Store.Titles()))

			if !loadWatch {
				return nil
			}

			source := lifecycle.NewSource(wiki.Service, "**")
			if err := source.Start(ctx); err != nil {
				return fmt.Errorf("watching store: %w", err)
			}

			worker, err := wiki.WatchFiles(ctx, args...)
			if err != nil {
				return fmt.Errorf("watching files: %w", err)
			}
			defer func() {
				if err := worker.Stop(context.Background()); err != nil {
					slog.Warn("stop watcher", "error", err)
				}
			}()

			fmt.Println("Watching for changes. Press Ctrl+C to stop.")
			for e := range source.Events() {
				fmt.Println(e.String())
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().BoolVarP(&loadWatch, "watch", "w", false, "Re-import files when they change")
}
