package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pos",
	Short: "Offline-first POS client: local store, sync worker and admin commands",
}

// Execute runs the CLI. Custom commands registered via Register are
// attached before dispatch.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
