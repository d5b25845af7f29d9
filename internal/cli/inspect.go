package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/session"
)

var inspectYAML bool

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectYAML, "yaml", false, "print the summary as YAML")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [asset-file]",
	Short: "Summarize a blueprint class asset",
	Long: `Inspect loads a blueprint class asset, including legacy multi-file
save sets, and prints what it holds: the main graph size, class variables,
local macros and the saved tab layout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := loadSession(args[0], newLogger())
		if err != nil {
			return err
		}
		summary := summarize(sess)

		if inspectYAML {
			out, err := yaml.Marshal(summary)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		}

		printSummary(summary)
		return nil
	},
}

type classSummary struct {
	ClassName   string            `yaml:"class_name"`
	AssetID     string            `yaml:"asset_id"`
	ParentClass string            `yaml:"parent_class,omitempty"`
	Nodes       int               `yaml:"nodes"`
	Connections int               `yaml:"connections"`
	Comments    int               `yaml:"comments"`
	Variables   []variableSummary `yaml:"variables,omitempty"`
	LocalMacros []macroSummary    `yaml:"local_macros,omitempty"`
	OpenTabs    []string          `yaml:"open_tabs"`
}

type variableSummary struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default string `yaml:"default,omitempty"`
}

type macroSummary struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Inputs  int    `yaml:"inputs"`
	Outputs int    `yaml:"outputs"`
	Nodes   int    `yaml:"nodes"`
}

func summarize(sess *session.EditingSession) classSummary {
	sess.FlushTabs()
	main := sess.MainTab().Graph

	summary := classSummary{
		ClassName:   sess.Metadata.ClassName,
		AssetID:     sess.Metadata.AssetID.String(),
		ParentClass: sess.Metadata.ParentClass,
		Nodes:       len(main.Nodes),
		Connections: len(main.Connections),
		Comments:    len(main.Comments),
	}
	for _, v := range sess.Variables {
		summary.Variables = append(summary.Variables, variableSummary{
			Name:    v.Name,
			Type:    v.Type.DisplayString(),
			Default: v.DefaultValue,
		})
	}
	for _, m := range sess.LocalMacros {
		summary.LocalMacros = append(summary.LocalMacros, macroSummary{
			ID:      m.ID.String(),
			Name:    m.Name,
			Inputs:  len(m.Interface.DataInputs()),
			Outputs: len(m.Interface.DataOutputs()),
			Nodes:   len(m.Graph.Nodes),
		})
	}
	for _, tab := range sess.Tabs {
		summary.OpenTabs = append(summary.OpenTabs, tab.Name)
	}
	return summary
}

func printSummary(s classSummary) {
	fmt.Printf("Class:       %s (%s)\n", s.ClassName, s.AssetID)
	if s.ParentClass != "" {
		fmt.Printf("Parent:      %s\n", s.ParentClass)
	}
	fmt.Printf("Main graph:  %d nodes, %d connections, %d comments\n", s.Nodes, s.Connections, s.Comments)
	if len(s.Variables) > 0 {
		fmt.Printf("Variables:   %d\n", len(s.Variables))
		for _, v := range s.Variables {
			fmt.Printf("  %-20s %-10s %s\n", v.Name, v.Type, v.Default)
		}
	}
	if len(s.LocalMacros) > 0 {
		fmt.Printf("Macros:      %d\n", len(s.LocalMacros))
		for _, m := range s.LocalMacros {
			fmt.Printf("  %-20s %d in / %d out, %d nodes\n", m.Name, m.Inputs, m.Outputs, m.Nodes)
		}
	}
	fmt.Printf("Open tabs:   %s\n", strings.Join(s.OpenTabs, ", "))
}
