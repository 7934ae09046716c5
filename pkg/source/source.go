package source

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cargomanifest/pkg/errors"
)

// Kind is the kind of origin a package comes from.
type Kind uint8

const (
	// KindRegistry is the central package registry.
	KindRegistry Kind = iota + 1
	// KindGit is a git repository at a reference.
	KindGit
	// KindPath is a directory on the local filesystem.
	KindPath
)

// String returns the scheme prefix used in [ID.String].
func (k Kind) String() string {
	switch k {
	case KindRegistry:
		return "registry"
	case KindGit:
		return "git"
	case KindPath:
		return "path"
	default:
		return "unknown"
	}
}

const (
	// DefaultReference is the git reference used when a dependency names
	// no branch, tag or revision.
	DefaultReference = "master"

	// RegistryURL is the index of the central registry.
	RegistryURL = "https://github.com/rust-lang/crates.io-index"
)

// ID is the canonical identity of a package origin.
// IDs are immutable and comparable; two IDs are equal when they describe
// the same origin.
type ID struct {
	kind      Kind
	reference string
	location  Location
}

// ForRegistry returns the identity of the central registry.
func ForRegistry() ID {
	return ID{kind: KindRegistry, location: Remote(RegistryURL)}
}

// ForGit returns the identity of a git repository at reference. An empty
// reference is replaced by [DefaultReference].
func ForGit(reference string, loc Location) ID {
	if reference == "" {
		reference = DefaultReference
	}
	return ID{kind: KindGit, reference: reference, location: loc}
}

// ForPath returns the identity of a package read from dir.
func ForPath(dir string) ID {
	return ID{kind: KindPath, location: Local(dir)}
}

// Kind returns the origin kind.
func (id ID) Kind() Kind { return id.kind }

// Reference returns the git branch, tag or revision. It is empty for
// non-git identities.
func (id ID) Reference() string { return id.reference }

// Location returns where the source lives.
func (id ID) Location() Location { return id.location }

// IsRegistry reports whether id is the central registry.
func (id ID) IsRegistry() bool { return id.kind == KindRegistry }

// IsGit reports whether id is a git source.
func (id ID) IsGit() bool { return id.kind == KindGit }

// IsPath reports whether id is a local directory.
func (id ID) IsPath() bool { return id.kind == KindPath }

// IsZero reports whether id was never set.
func (id ID) IsZero() bool { return id.kind == 0 }

// String renders id as "<kind>+<location>", with "#<reference>" appended
// for git sources. Path sources are rendered without the "file:" prefix; a
// git source on a local repository keeps it so that [ParseID] can read it
// back.
func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	loc := id.location.String()
	if id.kind == KindPath {
		loc = id.location.Path()
	}
	s := id.kind.String() + "+" + loc
	if id.kind == KindGit {
		s += "#" + id.reference
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseID parses the output of [ID.String].
func ParseID(s string) (ID, error) {
	kind, rest, ok := strings.Cut(s, "+")
	if !ok || rest == "" {
		return ID{}, errors.New(errors.ErrCodeInvalidInput, "malformed source id %q", s)
	}

	switch kind {
	case KindRegistry.String():
		if rest != RegistryURL {
			return ID{}, errors.New(errors.ErrCodeInvalidInput, "unknown registry %q", rest)
		}
		return ForRegistry(), nil
	case KindPath.String():
		return ForPath(rest), nil
	case KindGit.String():
		raw, ref, _ := strings.Cut(rest, "#")
		loc, err := parseGitLocation(raw)
		if err != nil {
			return ID{}, err
		}
		return ForGit(ref, loc), nil
	default:
		return ID{}, errors.New(errors.ErrCodeInvalidInput, "unknown source kind %q", kind)
	}
}

// parseGitLocation accepts canonical URLs as written by String without
// re-normalizing them.
func parseGitLocation(s string) (Location, error) {
	if strings.HasPrefix(s, localPrefix) {
		return ParseLocation(s)
	}
	if strings.Contains(s, "://") {
		return Remote(s), nil
	}
	return ParseLocation(s)
}

// GoString makes test failures readable.
func (id ID) GoString() string { return fmt.Sprintf("source.ID(%q)", id.String()) }
