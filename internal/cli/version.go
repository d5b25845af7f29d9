package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

const version = "v0.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of blueprintcli",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("blueprintcli %s\n", version)
	},
}
