package manifest

import (
	"encoding/json"

	"github.com/matzehuels/cargomanifest/pkg/source"
)

// Document is the serializable form of a parse result, used for JSON and
// YAML output.
type Document struct {
	Package      PackageID    `json:"package" yaml:"package"`
	Authors      []string     `json:"authors,omitempty" yaml:"authors,omitempty"`
	Build        string       `json:"build,omitempty" yaml:"build,omitempty"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
	Targets      []Target     `json:"targets" yaml:"targets"`
	TargetDir    string       `json:"target_dir" yaml:"target_dir"`
	Sources      []source.ID  `json:"sources,omitempty" yaml:"sources,omitempty"`
	NestedPaths  []string     `json:"nested_paths,omitempty" yaml:"nested_paths,omitempty"`
	Warnings     []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Document returns the serializable form of m.
func (m *Manifest) Document() Document {
	return Document{
		Package:      m.PackageID(),
		Authors:      m.Authors(),
		Build:        m.build,
		Dependencies: nonNil(m.Dependencies()),
		Targets:      nonNil(m.Targets()),
		TargetDir:    m.targetDir,
		Sources:      m.Sources(),
	}
}

// Document returns the serializable form of the manifest together with the
// nested paths and warnings.
func (r *Result) Document() Document {
	doc := r.Manifest.Document()
	doc.NestedPaths = append([]string(nil), r.NestedPaths...)
	doc.Warnings = append([]string(nil), r.Warnings...)
	return doc
}

// MarshalJSON implements json.Marshaler.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Document())
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
