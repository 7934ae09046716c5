package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cargomanifest/pkg/errors"
	"github.com/matzehuels/cargomanifest/pkg/manifest"
	"github.com/matzehuels/cargomanifest/pkg/source"
)

// readCommand creates the read command for interpreting a single manifest.
func (c *CLI) readCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read [path]",
		Short: "Interpret one manifest and print the result",
		Long: `Read a Cargo.toml, validate it, and print the package id, dependencies and build targets.

The path may name the manifest file or the directory holding it (default: the working directory).
Path dependencies are listed but not followed; use "walk" for that.`,
		Example: `  cargomanifest read
  cargomanifest read ./crates/core
  cargomanifest read ./crates/core/Cargo.toml -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return c.runRead(cmd, path)
		},
	}
}

func (c *CLI) runRead(cmd *cobra.Command, path string) error {
	cfg := c.config()
	logger := loggerFromContext(cmd.Context())

	file, err := manifestPath(path, cfg.Manifest)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "no manifest found at %s", file)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to read %s", file)
	}

	logger.Debug("Reading manifest", "file", file)
	res, err := manifest.Parse(data, source.ForPath(filepath.Dir(file)), manifest.Options{
		File:      file,
		TargetDir: cfg.TargetDir,
		Logger:    logger.Debugf,
	})
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		logger.Warn(w, "file", file)
	}

	if cfg.Format != FormatText {
		return writeStructured(cmd.OutOrStdout(), cfg.Format, res.Document())
	}
	printManifest(newPrinter(cmd.OutOrStdout()), res.Document())
	return nil
}

// manifestPath resolves path to an absolute manifest file. A directory is
// joined with name.
func manifestPath(path, name string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot resolve %s", path)
	}
	info, err := os.Stat(abs)
	if err == nil && info.IsDir() {
		return filepath.Join(abs, name), nil
	}
	return abs, nil
}
