package manifest

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cargomanifest/pkg/errors"
)

// Top-level keys understood by the typed decoder.
const (
	keyPackage      = "package"
	keyProject      = "project" // legacy alias of package
	keyLib          = "lib"
	keyBin          = "bin"
	keyDependencies = "dependencies"
)

var knownKeys = []string{keyPackage, keyProject, keyLib, keyBin, keyDependencies}

// tomlManifest is the typed intermediate form of a descriptor.
type tomlManifest struct {
	Package      *tomlProject
	Project      *tomlProject
	Lib          []tomlTarget
	Bin          []tomlTarget
	Dependencies map[string]tomlDependency

	unused []string
}

type tomlProject struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
	Authors []string `toml:"authors"`
	Build   *string  `toml:"build"`
}

type tomlTarget struct {
	Name      string   `toml:"name"`
	CrateType []string `toml:"crate_type"`
	Path      *string  `toml:"path"`
	Test      *bool    `toml:"test"`
}

// tomlDependency is either a bare version string or a detailed table.
type tomlDependency struct {
	simple   string
	detailed *detailedDependency
}

type detailedDependency struct {
	Version *string `toml:"version"`
	Path    *string `toml:"path"`
	Git     *string `toml:"git"`
	Branch  *string `toml:"branch"`
	Tag     *string `toml:"tag"`
	Rev     *string `toml:"rev"`
}

// decodeManifest maps the generic tree onto the descriptor shape. It only
// checks shape and primitive types; sources and paths are left unresolved.
func decodeManifest(t *Tree) (*tomlManifest, error) {
	m := &tomlManifest{}

	for _, key := range []string{keyPackage, keyProject} {
		var p tomlProject
		ok, err := t.Decode(key, &p)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := p.validate(key); err != nil {
			return nil, err
		}
		if key == keyPackage {
			m.Package = &p
		} else {
			m.Project = &p
		}
	}

	for _, section := range []struct {
		key string
		dst *[]tomlTarget
	}{{keyLib, &m.Lib}, {keyBin, &m.Bin}} {
		if _, err := t.Decode(section.key, section.dst); err != nil {
			return nil, err
		}
		for i, target := range *section.dst {
			if target.Name == "" {
				return nil, errors.New(errors.ErrCodeDecode, "expected a value for the key `%s[%d].name`", section.key, i)
			}
			if err := errors.ValidateCrateName(target.Name); err != nil {
				return nil, errors.Wrap(errors.ErrCodeDecode, err, "invalid target name for the key `%s[%d].name`", section.key, i)
			}
		}
	}

	deps, err := decodeDependencies(t)
	if err != nil {
		return nil, err
	}
	m.Dependencies = deps
	m.unused = unusedKeys(t)

	return m, nil
}

func (p *tomlProject) validate(key string) error {
	if p.Name == "" {
		return errors.New(errors.ErrCodeDecode, "expected a value for the key `%s.name`", key)
	}
	if p.Version == "" {
		return errors.New(errors.ErrCodeDecode, "expected a value for the key `%s.version`", key)
	}
	return nil
}

func decodeDependencies(t *Tree) (map[string]tomlDependency, error) {
	var raw map[string]toml.Primitive
	ok, err := t.Decode(keyDependencies, &raw)
	if err != nil || !ok {
		return nil, err
	}

	deps := make(map[string]tomlDependency, len(raw))
	for name, p := range raw {
		var v any
		if err := t.decodePrimitive(p, &v); err != nil {
			return nil, err
		}
		switch val := v.(type) {
		case string:
			deps[name] = tomlDependency{simple: val}
		case map[string]any:
			var d detailedDependency
			if err := t.decodePrimitive(p, &d); err != nil {
				return nil, err
			}
			deps[name] = tomlDependency{detailed: &d}
		default:
			return nil, errors.New(errors.ErrCodeDecode,
				"dependency `%s` must be a version string or a table, found %s", name, tomlType(val))
		}
	}
	return deps, nil
}

// unusedKeys lists keys of the known sections that nothing decoded, plus
// unknown top-level keys, in document order.
func unusedKeys(t *Tree) []string {
	var unused []string
	for _, k := range t.Keys() {
		if !slices.Contains(knownKeys, k) {
			unused = append(unused, k)
		}
	}
	for _, k := range t.undecoded() {
		if len(k) > 1 && slices.Contains(knownKeys, k[0]) {
			unused = append(unused, k.String())
		}
	}
	return unused
}

func tomlType(v any) string {
	switch v.(type) {
	case int64:
		return "an integer"
	case float64:
		return "a float"
	case bool:
		return "a boolean"
	case []any, []map[string]any:
		return "an array"
	case nil:
		return "nothing"
	default:
		return fmt.Sprintf("a %T", v)
	}
}
