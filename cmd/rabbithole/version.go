package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/rabbithole"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rabbithole",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rabbithole version %s\n", strings.TrimSpace(rabbithole.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
