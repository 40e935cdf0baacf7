package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/rabbithole"
	"github.com/aretw0/rabbithole/pkg/macros/slider"
)

var (
	toggleIndex int
)

var (
	errNoSlider   = errors.New("no slider at index")
	errNotHandled = errors.New("click was not handled")
)

var toggleCmd = &cobra.Command{
	Use:   "toggle [title]",
	Short: "Click a slider in a rendered record",
	Long: `Render a record, click the label of the slider at --index and print the
state record and the refreshed HTML.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWiki(context.Background(), func(wiki *rabbithole.Wiki) error {
			return toggle(wiki, args[0], toggleIndex, os.Stdout, os.Stderr)
		})
	},
}

// toggle clicks the index-th slider label of title. State records are
// reported on errOut, the refreshed HTML on out.
func toggle(wiki *rabbithole.Wiki, title string, index int, out, errOut io.Writer) error {
	doc, err := wiki.Render(title)
	if err != nil {
		return fmt.Errorf("rendering record: %w", err)
	}
	defer doc.Close()

	labels := doc.FindByRole(slider.RoleToggle)
	if index < 0 || index >= len(labels) {
		return fmt.Errorf("%w %d (found %d)", errNoSlider, index, len(labels))
	}
	if !doc.Click(labels[index]) {
		return errNotHandled
	}

	for _, t := range wiki.Store.Titles() {
		r, _ := wiki.Store.Get(t)
		if t != title && (r.Text() == slider.StateOpen || r.Text() == slider.StateClosed) {
			fmt.Fprintf(errOut, "%s: %s\n", t, r.Text())
		}
	}

	html, err := doc.HTML()
	if err != nil {
		return fmt.Errorf("writing HTML: %w", err)
	}
	fmt.Fprintln(out, html)
	return nil
}

func init() {
	rootCmd.AddCommand(toggleCmd)
	toggleCmd.Flags().IntVar(&toggleIndex, "index", 0, "Zero-based slider index in document order")
}
