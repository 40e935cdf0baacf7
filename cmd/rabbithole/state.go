package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/introspection"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/aretw0/rabbithole"
	"github.com/aretw0/rabbithole/pkg/tree"
)

// component is what the state command prints.
type component interface {
	introspection.Introspectable
	introspection.Component
}

var stateCmd = &cobra.Command{
	Use:   "state [title]",
	Short: "Print component state as JSON",
	Long: `Print the introspection state of the store and renderer. With a title the
record is rendered and the state of the document and of every widget in it
is added.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWiki(context.Background(), func(wiki *rabbithole.Wiki) error {
			out := map[string]any{
				wiki.Service.ComponentType():  wiki.Service.State(),
				wiki.Renderer.ComponentType(): wiki.Renderer.State(),
			}

			if len(args) == 1 {
				doc, err := wiki.Render(args[0])
				if err != nil {
					return fmt.Errorf("rendering record: %w", err)
				}
				defer doc.Close()
				out[doc.ComponentType()] = doc.State()

				var widgets []map[string]any
				tree.Walk(doc.Nodes(), func(n tree.Node) bool {
					m, ok := n.(*tree.Macro)
					if !ok {
						return true
					}
					if c, ok := m.Instance().(component); ok {
						widgets = append(widgets, map[string]any{
							"type":  c.ComponentType(),
							"state": c.State(),
						})
					}
					return true
				})
				out["widgets"] = widgets
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(out); err != nil {
				return fmt.Errorf("encoding JSON: %w", err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
}
