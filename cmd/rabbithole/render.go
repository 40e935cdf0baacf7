package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/rabbithole"
	"github.com/aretw0/rabbithole/pkg/markup"
)

var (
	renderText    bool
	renderDialect string
)

var renderCmd = &cobra.Command{
	Use:   "render [title]",
	Short: "Render a record to HTML",
	Long: `Render a record to HTML. With --text the argument is rendered as markup
instead of being looked up as a title.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWiki(context.Background(), func(wiki *rabbithole.Wiki) error {
			var doc *rabbithole.Document
			if renderText {
				doc = wiki.Renderer.RenderText(renderDialect, args[0])
			} else {
				var err error
				doc, err = wiki.Render(args[0])
				if err != nil {
					return fmt.Errorf("rendering record: %w", err)
				}
			}
			defer doc.Close()

			out, err := doc.HTML()
			if err != nil {
				return fmt.Errorf("writing HTML: %w", err)
			}
			fmt.Println(out)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().BoolVar(&renderText, "text", false, "Render the argument as markup")
	renderCmd.Flags().StringVar(&renderDialect, "dialect", markup.DialectWikiText, "Markup dialect used with --text")
}
