// Package source identifies where packages and dependencies come from.
//
// # Overview
//
// A manifest can pull dependencies from three kinds of origin:
//
//   - The central registry ([ForRegistry]), the default for bare version
//     requirements
//   - A git repository ([ForGit]) pinned to a branch, tag or revision
//   - A directory on disk ([ForPath]), used as the ambient identity of the
//     manifest being read and inherited by its path dependencies
//
// [ID] values are plain comparable structs, so they can be used as map keys
// and compared with ==.
//
// # Locations
//
// Git sources carry a [Location], parsed with [ParseLocation]:
//
//	loc, err := source.ParseLocation("https://github.com/serde-rs/serde.git")
//	id := source.ForGit("main", loc)
//	fmt.Println(id) // git+https://github.com/serde-rs/serde.git#main
//
// A "file:" prefix yields a local location; anything else must be a remote
// git URL (https, ssh, git or scp-like "git@host:path"). Strings that are
// neither fail with an UNRESOLVED_LOCATION error instead of panicking.
package source
