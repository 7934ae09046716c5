package manifest

import (
	"unicode/utf8"

	"github.com/matzehuels/cargomanifest/pkg/errors"
	"github.com/matzehuels/cargomanifest/pkg/source"
)

const (
	DefaultFile      = "Cargo.toml" // Default descriptor name used in messages
	DefaultTargetDir = "target"     // Default build output directory
)

// Options configures manifest interpretation.
type Options struct {
	File      string               // Descriptor name for messages (default: Cargo.toml)
	TargetDir string               // Build output directory (default: target)
	Logger    func(string, ...any) // Debug callback (optional); warnings go to Result.Warnings
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.File == "" {
		opts.File = DefaultFile
	}
	if opts.TargetDir == "" {
		opts.TargetDir = DefaultTargetDir
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Manifest is the validated description of one package. It is immutable;
// accessors return copies.
type Manifest struct {
	summary   Summary
	targets   []Target
	targetDir string
	sources   []source.ID
	build     string
	authors   []string
}

// Summary returns the package id and dependencies.
func (m *Manifest) Summary() Summary { return m.summary }

// PackageID returns the package coordinate.
func (m *Manifest) PackageID() PackageID { return m.summary.id }

// Name returns the package name.
func (m *Manifest) Name() string { return m.summary.id.Name }

// Dependencies returns a copy of the declared dependencies, sorted by name.
func (m *Manifest) Dependencies() []Dependency { return m.summary.Dependencies() }

// Targets returns a copy of the build targets, library first.
func (m *Manifest) Targets() []Target { return append([]Target(nil), m.targets...) }

// TargetDir returns the build output directory, relative to the manifest.
func (m *Manifest) TargetDir() string { return m.targetDir }

// Sources returns the git sources discovered among the dependencies, one
// per git dependency. Duplicates are not removed.
func (m *Manifest) Sources() []source.ID { return append([]source.ID(nil), m.sources...) }

// Build returns the build script path, or "" when none is declared.
func (m *Manifest) Build() string { return m.build }

// Authors returns a copy of the declared authors.
func (m *Manifest) Authors() []string { return append([]string(nil), m.authors...) }

// Result holds everything Parse produces.
type Result struct {
	Manifest *Manifest
	// NestedPaths lists the path dependencies, as written, whose manifests
	// the caller reads to complete resolution. They are relative to the
	// directory of the manifest that declared them.
	NestedPaths []string
	// Warnings lists unused keys and ambiguous declarations.
	Warnings []string
}

// Parse interprets the descriptor in data. src is the ambient source: the
// origin of this manifest, used for its own package id and inherited by its
// path dependencies.
//
// Every error is an [errors.ErrCodeInvalidManifest] error wrapping the
// specific cause. No partial result is returned.
func Parse(data []byte, src source.ID, opts Options) (*Result, error) {
	opts = opts.WithDefaults()
	res, err := parse(data, src, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s is not a valid manifest", opts.File)
	}
	return res, nil
}

func parse(data []byte, src source.ID, opts Options) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, errors.New(errors.ErrCodeEncoding, "%s is not valid UTF-8", opts.File)
	}

	tree, err := ParseTree(string(data), opts.File)
	if err != nil {
		return nil, err
	}

	tm, err := decodeManifest(tree)
	if err != nil {
		return nil, err
	}

	return tm.toManifest(src, opts)
}

// toManifest assembles the final manifest from the decoded form.
func (tm *tomlManifest) toManifest(src source.ID, opts Options) (*Result, error) {
	targets, err := normalizeTargets(tm.Lib, tm.Bin)
	if err != nil {
		return nil, err
	}

	deps, err := resolveDependencies(tm.Dependencies, src)
	if err != nil {
		return nil, err
	}

	project := tm.Package
	if project == nil {
		project = tm.Project
	}
	if project == nil {
		return nil, errors.New(errors.ErrCodeMissingPackage, "no `package` or `project` section found")
	}

	id, err := NewPackageID(project.Name, project.Version, src)
	if err != nil {
		return nil, err
	}

	if len(targets) == 0 {
		opts.Logger("manifest has no build targets; package=%s", project.Name)
	}

	var warnings []string
	for _, k := range tm.unused {
		warnings = append(warnings, "unused manifest key: "+k)
	}
	warnings = append(warnings, deps.Warnings...)

	return &Result{
		Manifest: &Manifest{
			summary:   NewSummary(id, deps.Dependencies),
			targets:   targets,
			targetDir: opts.TargetDir,
			sources:   deps.Sources,
			build:     deref(project.Build),
			authors:   append([]string(nil), project.Authors...),
		},
		NestedPaths: deps.NestedPaths,
		Warnings:    warnings,
	}, nil
}
