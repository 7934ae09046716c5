package workspace

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/cargomanifest/pkg/errors"
	"github.com/matzehuels/cargomanifest/pkg/observability"
	"github.com/matzehuels/cargomanifest/pkg/source"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// diamond lays out app -> {left, right} -> shared.
func diamond(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "app"), `
[package]
name = "app"
version = "1.0.0"

[dependencies]
left = { path = "../left" }
right = { path = "../right" }
serde = { git = "https://github.com/serde-rs/serde.git" }
`)
	writeManifest(t, filepath.Join(root, "left"), `
[package]
name = "left"
version = "0.1.0"

[dependencies]
shared = { path = "../shared" }
serde = { git = "https://github.com/serde-rs/serde.git" }
`)
	writeManifest(t, filepath.Join(root, "right"), `
[package]
name = "right"
version = "0.1.0"

[dependencies]
shared = { path = "../shared" }
`)
	writeManifest(t, filepath.Join(root, "shared"), `
[package]
name = "shared"
version = "0.1.0"

[dependencies]
app = { path = "../app" }
`)
	return root
}

func TestLoad(t *testing.T) {
	root := diamond(t)
	appDir := filepath.Join(root, "app")

	ws, err := Load(context.Background(), appDir, Options{Workers: 2})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if ws.Root.Manifest.Name() != "app" {
		t.Errorf("Root = %q, want app", ws.Root.Manifest.Name())
	}

	var names []string
	for _, p := range ws.Packages {
		names = append(names, p.Manifest.Name())
	}
	if want := []string{"app", "left", "right", "shared"}; !slices.Equal(names, want) {
		t.Errorf("packages = %v, want %v", names, want)
	}

	ambient := source.ForPath(appDir)
	for _, p := range ws.Packages {
		if p.Manifest.PackageID().Source != ambient {
			t.Errorf("%s source = %v, want %v", p.Manifest.Name(), p.Manifest.PackageID().Source, ambient)
		}
	}

	left, ok := ws.Package("left")
	if !ok {
		t.Fatal("Package(left) not found")
	}
	if want := []string{filepath.Join(root, "shared")}; !slices.Equal(left.Nested, want) {
		t.Errorf("left.Nested = %v, want %v", left.Nested, want)
	}

	if _, ok := ws.Package("missing"); ok {
		t.Error("Package(missing) should not be found")
	}
}

func TestLoadGitSourcesDeduplicated(t *testing.T) {
	ws, err := Load(context.Background(), filepath.Join(diamond(t), "app"), Options{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	sources := ws.GitSources()
	if len(sources) != 1 {
		t.Fatalf("GitSources() = %v, want one source", sources)
	}
	if sources[0].Reference() != source.DefaultReference {
		t.Errorf("Reference() = %q, want %q", sources[0].Reference(), source.DefaultReference)
	}
}

func TestLoadMissingNestedManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[package]
name = "app"
version = "1.0.0"

[dependencies]
ghost = { path = "ghost" }
`)

	_, err := Load(context.Background(), root, Options{})
	if err == nil {
		t.Fatal("Load() expected error")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestLoadInvalidNestedManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[package]
name = "app"
version = "1.0.0"

[dependencies]
broken = { path = "broken" }
`)
	writeManifest(t, filepath.Join(root, "broken"), "[dependencies]\n")

	_, err := Load(context.Background(), root, Options{})
	if !errors.Is(err, errors.ErrCodeMissingPackage) {
		t.Errorf("Load() error = %v, want %v", err, errors.ErrCodeMissingPackage)
	}
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, filepath.Join(diamond(t), "app"), Options{})
	if err != context.Canceled {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoadCustomManifestName(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Package.toml"), []byte("[package]\nname = \"x\"\nversion = \"0.1.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ws, err := Load(context.Background(), root, Options{ManifestName: "Package.toml", TargetDir: "out"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if ws.Root.Manifest.TargetDir() != "out" {
		t.Errorf("TargetDir() = %q, want out", ws.Root.Manifest.TargetDir())
	}

	if _, err := Load(context.Background(), root, Options{ManifestName: "../Cargo.toml"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load() with path manifest name error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	if opts.ManifestName != "Cargo.toml" {
		t.Errorf("ManifestName = %q", opts.ManifestName)
	}
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", opts.Workers, DefaultWorkers)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a no-op")
	}
}

type recordingHooks struct {
	observability.NoopWorkspaceHooks
	mu       sync.Mutex
	names    []string
	failures int
	packages int
}

func (h *recordingHooks) OnManifestComplete(_ context.Context, _, name string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.failures++
		return
	}
	h.names = append(h.names, name)
}

func (h *recordingHooks) OnLoadComplete(_ context.Context, _ string, packages int, _ time.Duration, _ error) {
	h.packages = packages
}

func TestLoadHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetWorkspaceHooks(hooks)
	defer observability.Reset()

	root := diamond(t)
	if _, err := Load(context.Background(), filepath.Join(root, "app"), Options{}); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	slices.Sort(hooks.names)
	want := []string{"app", "left", "right", "shared"}
	if !slices.Equal(hooks.names, want) {
		t.Errorf("manifest events = %v, want %v", hooks.names, want)
	}
	if hooks.packages != 4 {
		t.Errorf("load event packages = %d, want 4", hooks.packages)
	}

	writeManifest(t, filepath.Join(root, "broken"), "[package\n")
	if _, err := Load(context.Background(), filepath.Join(root, "broken"), Options{}); err == nil {
		t.Fatal("expected error")
	}
	if hooks.failures != 1 {
		t.Errorf("failed manifest events = %d, want 1", hooks.failures)
	}
}
