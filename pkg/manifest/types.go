package manifest

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cargomanifest/pkg/errors"
	"github.com/matzehuels/cargomanifest/pkg/source"
)

// CrateType is the kind of artifact a library target produces.
type CrateType string

// Recognized crate types.
const (
	CrateLib       CrateType = "lib"
	CrateRlib      CrateType = "rlib"
	CrateDylib     CrateType = "dylib"
	CrateStaticlib CrateType = "staticlib"
)

// ParseCrateType converts a crate_type tag into a CrateType.
func ParseCrateType(s string) (CrateType, error) {
	switch t := CrateType(s); t {
	case CrateLib, CrateRlib, CrateDylib, CrateStaticlib:
		return t, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidCrateType, "unknown crate type %q (expected lib, rlib, dylib or staticlib)", s)
	}
}

// TargetKind distinguishes library and binary targets.
type TargetKind uint8

const (
	// TargetLib is a library target.
	TargetLib TargetKind = iota + 1
	// TargetBin is an executable target.
	TargetBin
)

// String returns "lib" or "bin".
func (k TargetKind) String() string {
	switch k {
	case TargetLib:
		return "lib"
	case TargetBin:
		return "bin"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k TargetKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Profile is a named build configuration attached to a target.
type Profile struct {
	Name string `json:"name" yaml:"name"`
	Test bool   `json:"test,omitempty" yaml:"test,omitempty"`
}

// Profile names.
const (
	ProfileCompile = "compile"
	ProfileTest    = "test"
)

// CompileProfile returns the profile every target is built with.
func CompileProfile() Profile { return Profile{Name: ProfileCompile} }

// TestProfile returns the profile used to build a target's tests.
func TestProfile() Profile { return Profile{Name: ProfileTest, Test: true} }

// Target is one buildable artifact.
type Target struct {
	Name       string      `json:"name" yaml:"name"`
	Kind       TargetKind  `json:"kind" yaml:"kind"`
	CrateTypes []CrateType `json:"crate_types,omitempty" yaml:"crate_types,omitempty"` // Only set for libraries
	Path       string      `json:"path" yaml:"path"`                                   // Relative to the manifest directory
	Profiles   []Profile   `json:"profiles" yaml:"profiles"`
}

// IsLib reports whether t is a library target.
func (t Target) IsLib() bool { return t.Kind == TargetLib }

// IsBin reports whether t is a binary target.
func (t Target) IsBin() bool { return t.Kind == TargetBin }

// IsTested reports whether t carries a test profile.
func (t Target) IsTested() bool {
	for _, p := range t.Profiles {
		if p.Test {
			return true
		}
	}
	return false
}

// String renders t as "kind:path", e.g. "lib:src/core.rs".
func (t Target) String() string { return t.Kind.String() + ":" + t.Path }

// PackageID is the unique coordinate of a package.
type PackageID struct {
	Name    string          `json:"name" yaml:"name"`
	Version *semver.Version `json:"version" yaml:"version"`
	Source  source.ID       `json:"source" yaml:"source"`
}

// NewPackageID validates name and version and anchors them to src.
func NewPackageID(name, version string, src source.ID) (PackageID, error) {
	if err := errors.ValidateCrateName(name); err != nil {
		return PackageID{}, err
	}
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return PackageID{}, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid version %q for package `%s`", version, name)
	}
	return PackageID{Name: name, Version: v, Source: src}, nil
}

// String renders the id as "name vX.Y.Z (source)".
func (id PackageID) String() string {
	v := ""
	if id.Version != nil {
		v = id.Version.String()
	}
	return fmt.Sprintf("%s v%s (%s)", id.Name, v, id.Source)
}

// Dependency is one declared dependency of a package.
type Dependency struct {
	Name   string    `json:"name" yaml:"name"`
	Req    string    `json:"req,omitempty" yaml:"req,omitempty"` // Empty means any version
	Source source.ID `json:"source" yaml:"source"`

	constraint *semver.Constraints
}

// NewDependency validates name and the version requirement req.
func NewDependency(name, req string, src source.ID) (Dependency, error) {
	if err := errors.ValidateCrateName(name); err != nil {
		return Dependency{}, errors.Wrap(errors.ErrCodeInvalidDependency, err, "invalid dependency name %q", name)
	}

	d := Dependency{Name: name, Req: req, Source: src}
	if strings.TrimSpace(req) == "" {
		d.Req = ""
		return d, nil
	}

	c, err := semver.NewConstraint(caretDefault(req))
	if err != nil {
		return Dependency{}, errors.Wrap(errors.ErrCodeInvalidDependency, err, "invalid version requirement %q for dependency `%s`", req, name)
	}
	d.constraint = c
	return d, nil
}

// Constraint returns the parsed version requirement, or nil when any
// version is accepted. A comparator written without an operator is a caret
// range, so "1.0" accepts 1.5.0 and "0.1.0" accepts 0.1.5.
func (d Dependency) Constraint() *semver.Constraints { return d.constraint }

// caretDefault prefixes every comparator of req that has no operator with
// "^". Wildcards such as "1.*" are left alone.
func caretDefault(req string) string {
	parts := strings.Split(req, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && p[0] >= '0' && p[0] <= '9' && !strings.ContainsAny(p, "*xX") {
			p = "^" + p
		}
		parts[i] = p
	}
	return strings.Join(parts, ",")
}

// String renders the dependency as "name req (source)".
func (d Dependency) String() string {
	req := d.Req
	if req == "" {
		req = "*"
	}
	return fmt.Sprintf("%s %s (%s)", d.Name, req, d.Source)
}

// Summary is the part of a manifest dependency resolution works on.
type Summary struct {
	id   PackageID
	deps []Dependency
}

// NewSummary returns a summary owning a copy of deps.
func NewSummary(id PackageID, deps []Dependency) Summary {
	return Summary{id: id, deps: append([]Dependency(nil), deps...)}
}

// PackageID returns the package coordinate.
func (s Summary) PackageID() PackageID { return s.id }

// Dependencies returns a copy of the declared dependencies.
func (s Summary) Dependencies() []Dependency { return append([]Dependency(nil), s.deps...) }
