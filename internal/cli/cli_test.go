package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cargomanifest/pkg/errors"
)

const coreManifest = `
[package]
name = "core"
version = "0.3.1"
authors = ["Ann <ann@example.com>"]

[[lib]]
name = "core"

[[bin]]
name = "corectl"

[dependencies]
serde = "1.0"
util = { path = "../util" }
log = { git = "https://github.com/rust-lang/log.git", tag = "0.4.20" }
`

const utilManifest = `
[package]
name = "util"
version = "0.1.0"
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// project lays out core -> util under a fresh temp dir and returns the core dir.
func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "core", "Cargo.toml"), coreManifest)
	writeFile(t, filepath.Join(root, "util", "Cargo.toml"), utilManifest)
	return filepath.Join(root, "core")
}

// execute runs the root command with args and returns stdout and log output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), logs.String(), err
}

func TestReadText(t *testing.T) {
	dir := project(t)

	out, _, err := execute(t, "read", dir)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	for _, want := range []string{
		"core 0.3.1",
		"path+" + dir,
		"lib core src/core.rs [lib] (compile, test)",
		"bin corectl src/bin/corectl.rs (compile, test)",
		"serde 1.0",
		"../util",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestReadJSON(t *testing.T) {
	dir := project(t)

	out, _, err := execute(t, "read", filepath.Join(dir, "Cargo.toml"), "--format", "json", "--target-dir", "build")
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	var doc struct {
		Package struct {
			Name    string `json:"name"`
			Version string `json:"version"`
			Source  string `json:"source"`
		} `json:"package"`
		Dependencies []struct {
			Name   string `json:"name"`
			Source string `json:"source"`
		} `json:"dependencies"`
		Targets     []map[string]any `json:"targets"`
		TargetDir   string           `json:"target_dir"`
		Sources     []string         `json:"sources"`
		NestedPaths []string         `json:"nested_paths"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	if doc.Package.Name != "core" || doc.Package.Version != "0.3.1" {
		t.Errorf("package = %+v", doc.Package)
	}
	if doc.Package.Source != "path+"+dir {
		t.Errorf("package source = %q, want path+%s", doc.Package.Source, dir)
	}
	if doc.TargetDir != "build" {
		t.Errorf("target_dir = %q, want build", doc.TargetDir)
	}
	if len(doc.Targets) != 2 {
		t.Errorf("got %d targets, want 2", len(doc.Targets))
	}
	if len(doc.Dependencies) != 3 || doc.Dependencies[0].Name != "log" {
		t.Errorf("dependencies = %+v", doc.Dependencies)
	}
	wantGit := "git+https://github.com/rust-lang/log.git#0.4.20"
	if len(doc.Sources) != 1 || doc.Sources[0] != wantGit {
		t.Errorf("sources = %v, want [%s]", doc.Sources, wantGit)
	}
	if len(doc.NestedPaths) != 1 || doc.NestedPaths[0] != "../util" {
		t.Errorf("nested_paths = %v", doc.NestedPaths)
	}
}

func TestReadYAML(t *testing.T) {
	dir := project(t)

	out, _, err := execute(t, "read", dir, "-f", "yaml")
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, out)
	}
	pkg, ok := doc["package"].(map[string]any)
	if !ok || pkg["name"] != "core" {
		t.Errorf("package = %v", doc["package"])
	}
	if doc["target_dir"] != "target" {
		t.Errorf("target_dir = %v, want target", doc["target_dir"])
	}
}

func TestReadWarnings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), utilManifest+"edition = \"2021\"\n")

	_, logs, err := execute(t, "read", dir)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if !strings.Contains(logs, "unused manifest key: package.edition") {
		t.Errorf("logs missing unused key warning:\n%s", logs)
	}
}

func TestReadWarningsLoggedOnce(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), utilManifest+"edition = \"2021\"\n")

	var out, logs bytes.Buffer
	root := New(&logs, LogDebug).RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs([]string{"read", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("read error: %v", err)
	}

	if n := strings.Count(logs.String(), "package.edition"); n != 1 {
		t.Errorf("warning logged %d times, want once:\n%s", n, logs.String())
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string // empty means no file is written
		args     []string
		wantCode errors.Code
	}{
		{
			name:     "missing file",
			wantCode: errors.ErrCodeFileNotFound,
		},
		{
			name:     "syntax error",
			manifest: "[package\n",
			wantCode: errors.ErrCodeSyntax,
		},
		{
			name:     "missing package",
			manifest: "[dependencies]\n",
			wantCode: errors.ErrCodeMissingPackage,
		},
		{
			name:     "bad format",
			manifest: utilManifest,
			args:     []string{"--format", "xml"},
			wantCode: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.manifest != "" {
				writeFile(t, filepath.Join(dir, "Cargo.toml"), tt.manifest)
			}

			_, _, err := execute(t, append([]string{"read", dir}, tt.args...)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	dir := project(t)

	out, logs, err := execute(t, "walk", dir, "--workers", "2")
	if err != nil {
		t.Fatalf("walk error: %v", err)
	}

	for _, want := range []string{"core", "util", "git+https://github.com/rust-lang/log.git#0.4.20", "2 packages loaded"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(logs, "Loaded 2 packages") {
		t.Errorf("logs missing progress line:\n%s", logs)
	}
}

func TestWalkJSON(t *testing.T) {
	dir := project(t)

	out, _, err := execute(t, "walk", dir, "-f", "json")
	if err != nil {
		t.Fatalf("walk error: %v", err)
	}

	var doc struct {
		Root     string `json:"root"`
		Packages []struct {
			Dir      string `json:"dir"`
			Manifest struct {
				Package struct {
					Name   string `json:"name"`
					Source string `json:"source"`
				} `json:"package"`
			} `json:"manifest"`
		} `json:"packages"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	if doc.Root != dir {
		t.Errorf("root = %q, want %q", doc.Root, dir)
	}
	if len(doc.Packages) != 2 {
		t.Fatalf("got %d packages, want 2", len(doc.Packages))
	}
	// util inherits the origin of the manifest that declared it.
	for _, p := range doc.Packages {
		if p.Manifest.Package.Source != "path+"+dir {
			t.Errorf("%s source = %q, want path+%s", p.Manifest.Package.Name, p.Manifest.Package.Source, dir)
		}
	}
}

func TestConfigFile(t *testing.T) {
	dir := project(t)
	cfg := filepath.Join(t.TempDir(), "cargomanifest.yaml")
	writeFile(t, cfg, "format: json\ntarget_dir: out\n")

	out, _, err := execute(t, "read", dir, "--config", cfg)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if !strings.Contains(out, `"target_dir": "out"`) {
		t.Errorf("config file not applied:\n%s", out)
	}

	// Flags take precedence over the file.
	out, _, err = execute(t, "read", dir, "--config", cfg, "-f", "text")
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if strings.Contains(out, `"target_dir"`) {
		t.Errorf("--format flag did not override config:\n%s", out)
	}
}

func TestConfigEnv(t *testing.T) {
	dir := project(t)
	t.Setenv("CARGOMANIFEST_FORMAT", "yaml")

	out, _, err := execute(t, "read", dir)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if !strings.Contains(out, "target_dir: target") {
		t.Errorf("env format not applied:\n%s", out)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantCode errors.Code
	}{
		{"defaults", *defaultConfig(), ""},
		{"unknown format", Config{Format: "xml", Workers: 1, Manifest: "Cargo.toml"}, errors.ErrCodeInvalidFormat},
		{"zero workers", Config{Format: FormatText, Manifest: "Cargo.toml"}, errors.ErrCodeInvalidInput},
		{"manifest with separator", Config{Format: FormatText, Workers: 1, Manifest: "a/Cargo.toml"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if errors.GetCode(err) != tt.wantCode {
				t.Errorf("Validate() = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.Contains(out, "version: ") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, "cargomanifest") {
		t.Error("bash completion should mention the command name")
	}
}
