package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cargomanifest/pkg/manifest"
	"github.com/matzehuels/cargomanifest/pkg/source"
	"github.com/matzehuels/cargomanifest/pkg/workspace"
)

// walkDocument is the serializable form of a workspace.
type walkDocument struct {
	Root       string        `json:"root" yaml:"root"`
	Packages   []walkPackage `json:"packages" yaml:"packages"`
	GitSources []source.ID   `json:"git_sources,omitempty" yaml:"git_sources,omitempty"`
}

type walkPackage struct {
	Dir      string            `json:"dir" yaml:"dir"`
	Manifest manifest.Document `json:"manifest" yaml:"manifest"`
	Nested   []string          `json:"nested,omitempty" yaml:"nested,omitempty"`
}

// walkCommand creates the walk command for loading a package and its path dependencies.
func (c *CLI) walkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walk [dir]",
		Short: "Load a package and every package reachable through path dependencies",
		Long: `Read the manifest in dir, then follow its path dependencies recursively.

Each directory is read once. Manifests on the same level are read concurrently.
The git sources declared anywhere in the tree are listed without duplicates.`,
		Example: `  cargomanifest walk
  cargomanifest walk ./app --workers 4 -f yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runWalk(cmd, dir)
		},
	}

	cmd.Flags().Int("workers", 0, "number of manifests read concurrently")
	_ = c.v.BindPFlag("workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func (c *CLI) runWalk(cmd *cobra.Command, dir string) error {
	cfg := c.config()
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	ws, err := workspace.Load(cmd.Context(), dir, workspace.Options{
		ManifestName: cfg.Manifest,
		TargetDir:    cfg.TargetDir,
		Workers:      cfg.Workers,
		Logger:       logger.Debugf,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Loaded %d packages", len(ws.Packages)))

	for _, pkg := range ws.Packages {
		for _, w := range pkg.Warnings {
			logger.Warn(w, "package", pkg.Manifest.Name())
		}
	}

	if cfg.Format != FormatText {
		return writeStructured(cmd.OutOrStdout(), cfg.Format, newWalkDocument(ws))
	}
	printWorkspace(newPrinter(cmd.OutOrStdout()), ws)
	return nil
}

func newWalkDocument(ws *workspace.Workspace) walkDocument {
	doc := walkDocument{Root: ws.Root.Dir, GitSources: ws.GitSources()}
	for _, pkg := range ws.Packages {
		doc.Packages = append(doc.Packages, walkPackage{
			Dir:      pkg.Dir,
			Manifest: pkg.Manifest.Document(),
			Nested:   pkg.Nested,
		})
	}
	return doc
}

func printWorkspace(p *printer, ws *workspace.Workspace) {
	p.title("%s", ws.Root.Manifest.PackageID())
	p.info("packages (%d)", len(ws.Packages))
	for _, pkg := range ws.Packages {
		rel, err := filepath.Rel(ws.Root.Dir, pkg.Dir)
		if err != nil {
			rel = pkg.Dir
		}
		p.item(fmt.Sprintf("%s %s", pkg.Manifest.Name(), rel))
		p.detail("%d dependencies, %d targets", len(pkg.Manifest.Dependencies()), len(pkg.Manifest.Targets()))
	}

	if srcs := ws.GitSources(); len(srcs) > 0 {
		p.newline()
		p.info("git sources (%d)", len(srcs))
		for _, id := range srcs {
			p.item(StyleLink.Render(id.String()))
		}
	}

	p.newline()
	p.success("%d packages loaded", len(ws.Packages))
}
