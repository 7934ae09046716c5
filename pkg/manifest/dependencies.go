package manifest

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/cargomanifest/pkg/errors"
	"github.com/matzehuels/cargomanifest/pkg/source"
)

// resolved is the output of resolveDependencies. Sources and NestedPaths
// are what the caller has to fetch or read next.
type resolved struct {
	Dependencies []Dependency
	Sources      []source.ID
	NestedPaths  []string
	Warnings     []string
}

// resolveDependencies derives a source identity for every entry. Path
// dependencies inherit ambient, the identity of the manifest being read.
// Entries are processed in name order.
func resolveDependencies(entries map[string]tomlDependency, ambient source.ID) (resolved, error) {
	var r resolved
	for _, name := range slices.Sorted(maps.Keys(entries)) {
		entry := entries[name]

		req, src := entry.simple, source.ForRegistry()
		if d := entry.detailed; d != nil {
			var err error
			if src, err = r.detailedSource(name, d, ambient); err != nil {
				return resolved{}, err
			}
			req = deref(d.Version)
		}

		dep, err := NewDependency(name, req, src)
		if err != nil {
			return resolved{}, err
		}
		r.Dependencies = append(r.Dependencies, dep)
	}
	return r, nil
}

// detailedSource picks git, then path, then the registry, recording git
// sources and nested paths on r.
func (r *resolved) detailedSource(name string, d *detailedDependency, ambient source.ID) (source.ID, error) {
	switch {
	case d.Git != nil:
		loc, err := source.ParseLocation(*d.Git)
		if err != nil {
			return source.ID{}, errors.Wrap(errors.ErrCodeInvalidDependency, err, "failed to resolve git location of dependency `%s`", name)
		}
		ref, warning := reference(name, d)
		if warning != "" {
			r.Warnings = append(r.Warnings, warning)
		}
		id := source.ForGit(ref, loc)
		r.Sources = append(r.Sources, id)
		return id, nil
	case d.Path != nil:
		r.NestedPaths = append(r.NestedPaths, *d.Path)
		return ambient, nil
	default:
		return source.ForRegistry(), nil
	}
}

// reference applies branch > tag > rev > default precedence. It returns a
// warning when more than one of them is set.
func reference(name string, d *detailedDependency) (string, string) {
	candidates := []struct {
		key string
		val *string
	}{{"branch", d.Branch}, {"tag", d.Tag}, {"rev", d.Rev}}

	var set []string
	ref := ""
	for _, c := range candidates {
		if c.val == nil {
			continue
		}
		if len(set) == 0 {
			ref = *c.val
		}
		set = append(set, c.key)
	}

	if len(set) == 0 {
		return source.DefaultReference, ""
	}
	if len(set) == 1 {
		return ref, ""
	}
	return ref, fmt.Sprintf("dependency `%s` sets %s; using %s = %q", name, strings.Join(set, ", "), set[0], ref)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
