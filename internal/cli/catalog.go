package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Node catalog queries",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy-search the node catalog",
	Long: `Search matches node titles, ids, categories and keywords across the
built-in catalog plus any configured plugin manifests. Without a query it
lists the whole catalog in registration order.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		for _, def := range loadCatalog(newLogger()).Search(query) {
			fmt.Printf("%-26s %-14s %s\n", def.ID, def.Category, def.Title)
		}
	},
}
