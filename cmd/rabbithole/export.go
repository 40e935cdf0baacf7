package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/rabbithole"
)

var exportCmd = &cobra.Command{
	Use:   "export [file] [titles...]",
	Short: "Write records to a file",
	Long: `Write records to a file in the format of its extension (.html, .tid, .json,
.yaml, .md or .csv). Without titles every record is written. Combined with
--load this converts between formats.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWiki(context.Background(), func(wiki *rabbithole.Wiki) error {
			if err := wiki.Export(args[0], args[1:]...); err != nil {
				return fmt.Errorf("exporting records: %w", err)
			}
			fmt.Printf("Exported to %s.\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
