package cli

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cargomanifest/pkg/errors"
	"github.com/matzehuels/cargomanifest/pkg/manifest"
)

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "failed to encode JSON")
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "failed to encode YAML")
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", format)
}

// printManifest renders one manifest document as styled text.
func printManifest(p *printer, doc manifest.Document) {
	p.title("%s %s", doc.Package.Name, doc.Package.Version)
	p.keyValue("source", StyleLink.Render(doc.Package.Source.String()))
	if len(doc.Authors) > 0 {
		p.keyValue("authors", strings.Join(doc.Authors, ", "))
	}
	if doc.Build != "" {
		p.keyValue("build", doc.Build)
	}
	p.keyValue("target dir", doc.TargetDir)

	p.newline()
	if len(doc.Targets) == 0 {
		p.info("no build targets")
	} else {
		p.info("targets (%d)", len(doc.Targets))
		for _, t := range doc.Targets {
			p.item(targetLine(t))
		}
	}

	if len(doc.Dependencies) > 0 {
		p.info("dependencies (%d)", len(doc.Dependencies))
		for _, d := range doc.Dependencies {
			p.item(d.String())
		}
	}

	if len(doc.NestedPaths) > 0 {
		p.info("path dependencies (%d)", len(doc.NestedPaths))
		for _, path := range doc.NestedPaths {
			p.item(path)
		}
	}
}

// targetLine renders a target as "lib core src/core.rs [lib] (compile, test)".
func targetLine(t manifest.Target) string {
	var b strings.Builder
	b.WriteString(t.Kind.String())
	b.WriteString(" ")
	b.WriteString(t.Name)
	b.WriteString(" ")
	b.WriteString(t.Path)
	if len(t.CrateTypes) > 0 {
		types := make([]string, len(t.CrateTypes))
		for i, ct := range t.CrateTypes {
			types[i] = string(ct)
		}
		b.WriteString(" [" + strings.Join(types, ", ") + "]")
	}
	profiles := make([]string, len(t.Profiles))
	for i, pr := range t.Profiles {
		profiles[i] = pr.Name
	}
	b.WriteString(" (" + strings.Join(profiles, ", ") + ")")
	return b.String()
}
