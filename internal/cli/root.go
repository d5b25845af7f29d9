// Package cli implements the blueprintcli command tree: asset inspection,
// compilation to Rust source, node catalog queries and macro listing.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/errmap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/io/blueprintjson"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/macrolib"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/nodedef"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/session"
)

var rootCmd = &cobra.Command{
	Use:   "blueprintcli",
	Short: "Blueprintcli inspects and compiles blueprint class assets",
	Long: `Blueprintcli works with the blueprint class assets the visual editor
saves: it summarizes them, compiles them to Rust source, searches the node
catalog and lists the macros a class can call.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var cfgFilePath string

const (
	ConfigFileName      = ".blueprintcli"
	ConfigFileExtension = ".yaml"
)

func init() {
	homePath, err := homedir.Dir()
	if err != nil {
		log.Fatal(err)
	}

	cfgFilePath = fmt.Sprintf("%s/%s%s", homePath, ConfigFileName, ConfigFileExtension)

	viper.SetDefault("library_dir", "")
	viper.SetDefault("manifest_dir", "")
	viper.SetDefault("output_dir", "generated")

	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFilePath, "config", cfgFilePath, "config file (default is $HOME/.blueprintcli.yaml)")
}

// Execute runs the command tree. Errors are classified through errmap so the
// user sees one humanized line instead of a raw wrapped chain.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "blueprintcli: %s\n", errmap.Map(err).Error())
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(cfgFilePath)
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "blueprintcli: reading config %s: %v\n", cfgFilePath, err)
	}
}

// newLogger builds the CLI's slog logger from the LOG_LEVEL environment
// variable. Warnings stay visible by default so degraded legacy loads and
// skipped libraries are not silent.
func newLogger() *slog.Logger {
	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG":
		logLevel = slog.LevelDebug
	case "INFO":
		logLevel = slog.LevelInfo
	case "WARNING":
		logLevel = slog.LevelWarn
	case "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// loadCatalog returns the built-in node catalog extended with every plugin
// manifest found under the configured manifest_dir. A manifest that fails to
// parse is skipped with a warning.
func loadCatalog(logger *slog.Logger) *nodedef.Catalog {
	catalog := nodedef.NewBuiltins()
	dir := viper.GetString("manifest_dir")
	if dir == "" {
		return catalog
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("node manifest dir unreadable", "dir", dir, "error", err)
		}
		return catalog
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := catalog.LoadManifestFile(path); err != nil {
			logger.Warn("skipping node manifest", "path", path, "error", err)
		}
	}
	return catalog
}

func loadRegistry(logger *slog.Logger) (*macrolib.Registry, error) {
	dir := viper.GetString("library_dir")
	if dir == "" {
		return macrolib.NewRegistry(nil), nil
	}
	return macrolib.LoadDir(dir, logger)
}

// loadSession opens an asset file into an editing session backed by the
// configured catalog and macro libraries.
func loadSession(path string, logger *slog.Logger) (*session.EditingSession, error) {
	registry, err := loadRegistry(logger)
	if err != nil {
		return nil, err
	}
	sess, err := blueprintjson.Load(path, loadCatalog(logger), registry, logger)
	if err != nil {
		return nil, errmap.MapAssetError(path, err)
	}
	return sess, nil
}
