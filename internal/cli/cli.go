// Package cli implements the cargomanifest command-line interface.
//
// This package wires the manifest interpreter and the workspace loader to
// cobra commands. Logging goes through charmbracelet/log, configuration
// through viper.
//
// # Commands
//
//   - read: Interpret one Cargo.toml and print the resulting manifest
//   - walk: Load a package and every package reachable through path
//     dependencies
//   - completion: Generate shell completion scripts
//   - version: Print build information
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
//
// # Configuration
//
// Defaults for --format, --target-dir, --workers and --manifest can be set
// in cargomanifest.yaml ($XDG_CONFIG_HOME/cargomanifest or the working
// directory) or through CARGOMANIFEST_* environment variables.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/cargomanifest/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "cargomanifest"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	v          *viper.Viper
	cfg        *Config
	configFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		v:      viper.New(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "cargomanifest interprets Cargo.toml package manifests",
		Long:         `cargomanifest reads Cargo.toml descriptors and prints the validated manifest: package identity, dependency sources, build targets and the nested manifests reachable through path dependencies.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.v, c.configFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default: "+appName+".yaml in the config dir or working dir)")
	flags.StringP("format", "f", "", "output format: text, json or yaml")
	flags.String("target-dir", "", "build output directory recorded in manifests")
	flags.String("manifest", "", "manifest file name")
	_ = c.v.BindPFlag("format", flags.Lookup("format"))
	_ = c.v.BindPFlag("target_dir", flags.Lookup("target-dir"))
	_ = c.v.BindPFlag("manifest", flags.Lookup("manifest"))

	root.AddCommand(c.readCommand())
	root.AddCommand(c.walkCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// config returns the loaded configuration, or the defaults before the root
// pre-run has loaded it.
func (c *CLI) config() *Config {
	if c.cfg == nil {
		return defaultConfig()
	}
	return c.cfg
}
