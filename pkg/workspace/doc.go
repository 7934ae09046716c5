// Package workspace loads a package together with its path dependencies.
//
// [manifest.Parse] does not read files: it reports the path dependencies of
// a manifest as nested paths and leaves it to the caller to read them.
// [Load] is that caller. It reads the root manifest from disk, then follows
// nested paths level by level, reading each level concurrently and every
// directory at most once.
//
//	ws, err := workspace.Load(ctx, ".", workspace.Options{})
//	for _, pkg := range ws.Packages {
//	    fmt.Println(pkg.Dir, pkg.Manifest.PackageID())
//	}
//
// Nested manifests are interpreted with the ambient source of the root, so a
// path dependency and the package it points to share the same origin.
//
// [manifest.Parse]: github.com/matzehuels/cargomanifest/pkg/manifest.Parse
package workspace
