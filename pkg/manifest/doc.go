// Package manifest interprets Cargo.toml descriptors.
//
// # Overview
//
// [Parse] turns the raw bytes of a descriptor into a validated [Manifest]
// that dependency resolution and build planning can consume without checking
// it again. Interpretation runs in four steps:
//
//  1. [ParseTree] decodes the TOML text into a generic [Tree], reporting
//     syntax errors with one-based line/column ranges
//  2. The typed decoder maps the tree onto the known descriptor shape
//     (package, lib, bin, dependencies)
//  3. Every dependency gets a [source.ID]: the registry, a git repository at
//     a reference, or the ambient source of the manifest for path
//     dependencies
//  4. Library and binary declarations are normalized into an ordered list
//     of [Target] values with inferred paths and build profiles
//
// # Usage
//
//	data, _ := os.ReadFile("Cargo.toml")
//	res, err := manifest.Parse(data, source.ForPath("."), manifest.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, dep := range res.Manifest.Dependencies() {
//	    fmt.Println(dep.Name, dep.Source)
//	}
//	// res.NestedPaths lists the path dependencies whose manifests the
//	// caller has to read next.
//
// # Git References
//
// A git dependency is pinned to its branch, else its tag, else its rev,
// else "master". Setting more than one is not an error; the first one in
// that order wins and a warning is recorded.
//
// # Target Inference
//
// Targets without an explicit path are looked up under src/. Binaries move
// to src/bin/ when the manifest also declares a library:
//
//	[[lib]]            -> src/core.rs
//	name = "core"
//
//	[[bin]]            -> src/bin/a.rs (src/a.rs without the [[lib]])
//	name = "a"
//
// # Errors
//
// Every failure is an [errors.ErrCodeInvalidManifest] error whose cause
// carries the specific code (SYNTAX, DECODE, MISSING_PACKAGE, ...). Parse is
// all-or-nothing: no partial result is returned.
//
// # Concurrency
//
// Parse performs no I/O and keeps no state between calls. It is safe to call
// from multiple goroutines.
//
// [errors.ErrCodeInvalidManifest]: github.com/matzehuels/cargomanifest/pkg/errors.ErrCodeInvalidManifest
package manifest
