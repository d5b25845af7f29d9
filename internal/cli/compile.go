package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/compiler"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/compilerun"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/errmap"
)

var compileOutDir string

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVar(&compileOutDir, "out", "", "output directory (default <output_dir>/<class-name>)")
}

var compileCmd = &cobra.Command{
	Use:   "compile [asset-file]",
	Short: "Compile a blueprint class asset to Rust source",
	Long: `Compile generates one Rust source file per event entry point, a macro
module when the class calls macros, and a mod.rs with the class variable
struct. Files are only written when the whole class compiles.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		sess, err := loadSession(args[0], logger)
		if err != nil {
			return err
		}
		sess.FlushTabs()

		outDir := compileOutDir
		if outDir == "" {
			outDir = filepath.Join(viper.GetString("output_dir"), strings.ToLower(sess.Metadata.ClassName))
		}

		runner := compilerun.NewRunner(logger)
		res, err := runner.Compile(cmd.Context(), compilerun.Request{
			Input: compiler.Input{
				ClassName:   sess.Metadata.ClassName,
				Graph:       sess.MainTab().Graph,
				LocalMacros: sess.LocalMacros,
				Variables:   sess.Variables,
				Registry:    sess.Registry(),
				Catalog:     sess.Catalog(),
			},
			OutDir: outDir,
			OnProgress: func(p compilerun.Progress) {
				if p.Stage == compilerun.StageWriting {
					fmt.Printf("writing %d files to %s\n", p.Files, outDir)
				}
			},
		})
		if err != nil {
			return errmap.New(errmap.CodeCompileFailed, "", err)
		}

		fmt.Printf("compiled %s: %s\n", sess.Metadata.ClassName, strings.Join(res.Events, ", "))
		return nil
	},
}
