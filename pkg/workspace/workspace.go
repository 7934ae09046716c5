package workspace

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cargomanifest/pkg/errors"
	"github.com/matzehuels/cargomanifest/pkg/manifest"
	"github.com/matzehuels/cargomanifest/pkg/observability"
	"github.com/matzehuels/cargomanifest/pkg/source"
)

const DefaultWorkers = 8 // Default number of manifests read concurrently

// Options configures workspace loading.
type Options struct {
	ManifestName string               // Manifest file name (default: Cargo.toml)
	TargetDir    string               // Build output directory passed to the parser
	Workers      int                  // Concurrent reads (default: 8)
	Logger       func(string, ...any) // Progress/warning callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.ManifestName == "" {
		opts.ManifestName = manifest.DefaultFile
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Package is one manifest read from disk.
type Package struct {
	Dir      string             // Absolute directory holding the manifest
	Manifest *manifest.Manifest // Interpreted manifest
	Nested   []string           // Absolute directories of its path dependencies
	Warnings []string           // Warnings reported by the parser
}

// Workspace is a root package and every package reachable through path
// dependencies.
type Workspace struct {
	Root     *Package
	Packages []*Package // Root first, then sorted by directory
}

// Load reads the manifest in dir and, recursively, the manifests of its
// path dependencies.
func Load(ctx context.Context, dir string, opts Options) (*Workspace, error) {
	opts = opts.WithDefaults()
	if err := errors.ValidateManifestFilename(opts.ManifestName); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot resolve %s", dir)
	}

	hooks := observability.Workspace()
	hooks.OnLoadStart(ctx, root)
	start := time.Now()

	l := &loader{opts: opts, src: source.ForPath(root), hooks: hooks}
	pkgs, err := l.run(ctx, root)
	hooks.OnLoadComplete(ctx, root, len(pkgs), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{Root: pkgs[0]}
	rest := pkgs[1:]
	slices.SortFunc(rest, func(a, b *Package) int { return strings.Compare(a.Dir, b.Dir) })
	ws.Packages = append([]*Package{pkgs[0]}, rest...)
	return ws, nil
}

type loader struct {
	opts  Options
	src   source.ID
	hooks observability.WorkspaceHooks
}

// run reads one level of directories at a time. Directories already read
// are skipped, which also breaks cycles between path dependencies.
func (l *loader) run(ctx context.Context, root string) ([]*Package, error) {
	visited := map[string]bool{root: true}
	frontier := []string{root}
	var all []*Package

	for len(frontier) > 0 {
		level := make([]*Package, len(frontier))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.opts.Workers)
		for i, dir := range frontier {
			g.Go(func() error {
				pkg, err := l.load(gctx, dir)
				level[i] = pkg
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var next []string
		for _, pkg := range level {
			for _, child := range pkg.Nested {
				if !visited[child] {
					visited[child] = true
					next = append(next, child)
				}
			}
		}
		all = append(all, level...)
		frontier = next
	}

	return all, nil
}

func (l *loader) load(ctx context.Context, dir string) (*Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.hooks.OnManifestStart(ctx, dir)
	start := time.Now()
	pkg, err := l.read(dir)
	if err != nil {
		l.hooks.OnManifestComplete(ctx, dir, "", 0, time.Since(start), err)
		return nil, err
	}
	l.hooks.OnManifestComplete(ctx, dir, pkg.Manifest.Name(), len(pkg.Manifest.Dependencies()), time.Since(start), nil)
	return pkg, nil
}

func (l *loader) read(dir string) (*Package, error) {
	path := filepath.Join(dir, l.opts.ManifestName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no manifest found at %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to read %s", path)
	}

	res, err := manifest.Parse(data, l.src, manifest.Options{
		File:      path,
		TargetDir: l.opts.TargetDir,
		Logger:    l.opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	pkg := &Package{Dir: dir, Manifest: res.Manifest, Warnings: res.Warnings}
	for _, p := range res.NestedPaths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		pkg.Nested = append(pkg.Nested, filepath.Clean(p))
	}

	l.opts.Logger("loaded %s (%d dependencies, %d path dependencies)",
		res.Manifest.Name(), len(res.Manifest.Dependencies()), len(pkg.Nested))
	return pkg, nil
}

// Package returns the package with the given name.
func (w *Workspace) Package(name string) (*Package, bool) {
	for _, p := range w.Packages {
		if p.Manifest.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// GitSources returns the git sources declared anywhere in the workspace,
// without duplicates, in package order.
func (w *Workspace) GitSources() []source.ID {
	seen := make(map[source.ID]bool)
	var out []source.ID
	for _, p := range w.Packages {
		for _, id := range p.Manifest.Sources() {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
