package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
)

func init() {
	rootCmd.AddCommand(macroCmd)
	macroCmd.AddCommand(macroListCmd)
}

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Macro library queries",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var macroListCmd = &cobra.Command{
	Use:   "list [asset-file]",
	Short: "List the macros a blueprint class can call",
	Long: `List prints every macro from the configured libraries. Given an asset
file it also includes the class's own local macros, listed first the way
macro references resolve.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		if len(args) == 0 {
			registry, err := loadRegistry(logger)
			if err != nil {
				return err
			}
			for _, lib := range registry.Libraries() {
				for _, m := range lib.Macros {
					printMacroLine(lib.ID, m)
				}
			}
			return nil
		}

		sess, err := loadSession(args[0], logger)
		if err != nil {
			return err
		}
		sess.FlushTabs()
		for _, hit := range sess.SearchMacros("") {
			printMacroLine(hit.LibraryID, hit.Macro)
		}
		return nil
	},
}

func printMacroLine(libraryID string, m msubgraph.SubGraphDefinition) {
	source := "local"
	if libraryID != "" {
		source = libraryID
	}
	fmt.Printf("%-26s %-14s %s (%d in / %d out)\n",
		m.ID.String(), source, m.Name, len(m.Interface.DataInputs()), len(m.Interface.DataOutputs()))
}
