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
	"github.com/aretw0/rabbithole/pkg/server"
)

var (
	serveAddr  string
	serveWatch []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live documents over HTTP",
	Long: `Serve rendered records over HTTP. Clicking a slider label in the browser
writes its state record and the refreshed page is pushed back with
server-sent events. With --watch the given files are re-imported when they
change and open pages follow.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withWiki(ctx, func(wiki *rabbithole.Wiki) error {
			if len(serveWatch) > 0 {
				if err := wiki.Load(ctx, serveWatch...); err != nil {
					return fmt.Errorf("loading files: %w", err)
				}
				worker, err := wiki.WatchFiles(ctx, serveWatch...)
				if err != nil {
					return fmt.Errorf("watching files: %w", err)
				}
				defer func() {
					if err := worker.Stop(context.Background()); err != nil {
						slog.Warn("stop watcher", "error", err)
					}
				}()
			}

			srv := server.New(server.Config{
				Store:    wiki.Store,
				Renderer: wiki.Renderer,
				Logger:   slog.Default(),
			})
			if err := srv.Run(ctx, serveAddr); err != nil {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
	serveCmd.Flags().StringSliceVarP(&serveWatch, "watch", "w", nil, "Files to import and re-import on change")
}
