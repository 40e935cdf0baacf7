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
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the titles in the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWiki(context.Background(), func(wiki *rabbithole.Wiki) error {
			titles := wiki.Store.Titles()

			if listJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(titles); err != nil {
					return fmt.Errorf("encoding JSON: %w", err)
				}
				return nil
			}

			if len(titles) == 0 {
				fmt.Println("No records found.")
				return nil
			}
			for _, t := range titles {
				fmt.Println(t)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
