package manifest

import (
	"path"

	"github.com/matzehuels/cargomanifest/pkg/errors"
)

const (
	sourceDir = "src"
	sourceExt = ".rs"
)

// binDirs is the path inference table for binaries, keyed by whether the
// manifest also declares a library.
var binDirs = map[bool]string{
	false: sourceDir,
	true:  path.Join(sourceDir, "bin"),
}

// normalizeTargets turns [[lib]] and [[bin]] declarations into the ordered
// target list: the library first, then binaries in declared order.
func normalizeTargets(libs, bins []tomlTarget) ([]Target, error) {
	if len(libs) > 1 {
		return nil, errors.New(errors.ErrCodeMultipleLibraries,
			"only one library target may be declared, found %d", len(libs))
	}

	hasLib := len(libs) == 1
	targets := make([]Target, 0, len(libs)+len(bins))

	if hasLib {
		lib, err := libTarget(libs[0])
		if err != nil {
			return nil, err
		}
		targets = append(targets, lib)
	}

	for _, b := range bins {
		targets = append(targets, Target{
			Name:     b.Name,
			Kind:     TargetBin,
			Path:     targetPath(b, binDirs[hasLib]),
			Profiles: targetProfiles(b),
		})
	}

	return targets, nil
}

func libTarget(l tomlTarget) (Target, error) {
	crateTypes := []CrateType{CrateLib}
	if len(l.CrateType) > 0 {
		crateTypes = make([]CrateType, 0, len(l.CrateType))
		for _, tag := range l.CrateType {
			ct, err := ParseCrateType(tag)
			if err != nil {
				return Target{}, errors.Wrap(errors.ErrCodeInvalidCrateType, err, "library `%s` has an invalid crate_type", l.Name)
			}
			crateTypes = append(crateTypes, ct)
		}
	}

	return Target{
		Name:       l.Name,
		Kind:       TargetLib,
		CrateTypes: crateTypes,
		Path:       targetPath(l, sourceDir),
		Profiles:   targetProfiles(l),
	}, nil
}

// targetPath returns the explicit path, or dir/<name>.rs.
func targetPath(t tomlTarget, dir string) string {
	if t.Path != nil {
		return *t.Path
	}
	return path.Join(dir, t.Name+sourceExt)
}

// targetProfiles always includes compile; test is dropped only by an
// explicit test = false.
func targetProfiles(t tomlTarget) []Profile {
	profiles := []Profile{CompileProfile()}
	if t.Test == nil || *t.Test {
		profiles = append(profiles, TestProfile())
	}
	return profiles
}
