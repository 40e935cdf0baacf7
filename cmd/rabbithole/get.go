package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/aretw0/rabbithole"
)

var (
	getJSON bool
)

var getCmd = &cobra.Command{
	Use:   "get [title]",
	Short: "Print a record",
	Long:  `Print the text of a record, or all of its fields as a JSON object with --json.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWiki(context.Background(), func(wiki *rabbithole.Wiki) error {
			record, err := wiki.Service.GetRecord(args[0])
			if err != nil {
				return fmt.Errorf("reading record: %w", err)
			}

			if getJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(record.Fields); err != nil {
					return fmt.Errorf("encoding JSON: %w", err)
				}
				return nil
			}

			fmt.Print(record.Text())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().BoolVar(&getJSON, "json", false, "Output in JSON format")
}
