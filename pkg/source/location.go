package source

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/matzehuels/cargomanifest/pkg/errors"
)

// localPrefix marks a location string as a filesystem path.
const localPrefix = "file:"

type locationKind uint8

const (
	localLocation locationKind = iota + 1
	remoteLocation
)

// Location is either a local filesystem path or a remote URL.
// The zero value is an empty location; use [Local], [Remote] or
// [ParseLocation] to build one.
type Location struct {
	kind  locationKind
	value string
}

// Local returns a location for a filesystem path.
func Local(path string) Location { return Location{kind: localLocation, value: path} }

// Remote returns a location for an already canonical URL.
func Remote(url string) Location { return Location{kind: remoteLocation, value: url} }

// IsLocal reports whether l is a filesystem path.
func (l Location) IsLocal() bool { return l.kind == localLocation }

// IsRemote reports whether l is a URL.
func (l Location) IsRemote() bool { return l.kind == remoteLocation }

// IsZero reports whether l was never set.
func (l Location) IsZero() bool { return l.kind == 0 }

// Path returns the filesystem path of a local location, or "".
func (l Location) Path() string {
	if l.IsLocal() {
		return l.value
	}
	return ""
}

// URL returns the URL of a remote location, or "".
func (l Location) URL() string {
	if l.IsRemote() {
		return l.value
	}
	return ""
}

// String renders l so that ParseLocation(l.String()) == l.
func (l Location) String() string {
	if l.IsLocal() {
		return localPrefix + l.value
	}
	return l.value
}

// ParseLocation resolves a git location string.
//
// A "file:" prefix yields a local path with the prefix stripped. Any other
// string must be a remote git URL; it is normalized through go-git's
// endpoint parser, so "git@github.com:a/b.git" becomes
// "ssh://git@github.com/a/b.git". Strings that are neither return an
// [errors.ErrCodeUnresolvedSource] error.
func ParseLocation(s string) (Location, error) {
	if path, ok := strings.CutPrefix(s, localPrefix); ok {
		if path == "" {
			return Location{}, errors.New(errors.ErrCodeUnresolvedSource, "empty local path in location %q", s)
		}
		return Local(path), nil
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, errors.New(errors.ErrCodeUnresolvedSource, "location cannot be empty")
	}

	ep, err := transport.NewEndpoint(s)
	if err != nil {
		return Location{}, errors.Wrap(errors.ErrCodeUnresolvedSource, err, "invalid URL %q", s)
	}
	// go-git treats anything it cannot read as a URL as a local path.
	if ep.Protocol == "file" || ep.Host == "" {
		return Location{}, errors.New(errors.ErrCodeUnresolvedSource, "%q is neither a URL nor a file: path", s)
	}
	return Remote(ep.String()), nil
}
