package runtime

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/agentx-labs/storyshots/internal/manifest"
)

// fakeBin writes an executable shell script standing in for node.
func fakeBin(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping")
	}
	path := filepath.Join(t.TempDir(), "node")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), manifest.FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoader(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
		check   func(t *testing.T, l interface{})
	}{
		{name: "", check: func(t *testing.T, l interface{}) {
			if _, ok := l.(manifest.StaticLoader); !ok {
				t.Errorf("Loader(\"\") returned %T, want manifest.StaticLoader", l)
			}
		}},
		{name: LoaderStatic, check: func(t *testing.T, l interface{}) {
			if _, ok := l.(manifest.StaticLoader); !ok {
				t.Errorf("Loader(static) returned %T, want manifest.StaticLoader", l)
			}
		}},
		{name: LoaderNode, check: func(t *testing.T, l interface{}) {
			n, ok := l.(*NodeLoader)
			if !ok {
				t.Fatalf("Loader(node) returned %T, want *NodeLoader", l)
			}
			if n.Bin != "/opt/node/bin/node" {
				t.Errorf("Bin = %q, want /opt/node/bin/node", n.Bin)
			}
		}},
		{name: "deno", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Loader(tt.name, afero.NewMemMapFs(), "/opt/node/bin/node")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unknown loader, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Loader error: %v", err)
			}
			tt.check(t, l)
		})
	}
}

func TestNodeLoader_DecodesOutput(t *testing.T) {
	bin := fakeBin(t, `echo '{"stories":["./src/**/*.stories.js",{"path":"./lib","recursive":true,"match":"/\\.story\\.js$/"}]}'`)
	path := writeManifest(t, "")

	m, err := (&NodeLoader{Bin: bin}).Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := &manifest.Main{Stories: []manifest.StoryPattern{
		{Glob: "./src/**/*.stories.js"},
		{Specifier: &manifest.Specifier{Path: "./lib", Recursive: true, Match: `/\.story\.js$/`}},
	}}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeLoader_NoStories(t *testing.T) {
	bin := fakeBin(t, `echo '{}'`)
	m, err := (&NodeLoader{Bin: bin}).Load(writeManifest(t, ""))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(m.Stories) != 0 {
		t.Errorf("Stories = %v, want none", m.Stories)
	}
}

func TestNodeLoader_Failures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"non-zero exit", `echo "SyntaxError: Unexpected token" >&2; exit 1`, "SyntaxError"},
		{"garbage output", `echo 'not json'`, "decoding exports"},
		{"schema violation", `echo '{"stories":[42]}'`, "decoding exports"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin := fakeBin(t, tt.body)
			_, err := (&NodeLoader{Bin: bin}).Load(writeManifest(t, ""))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNodeLoader_SchemaViolationIsValidationError(t *testing.T) {
	bin := fakeBin(t, `echo '{"stories":[{"path":"./src"}]}'`)
	path := writeManifest(t, "")
	_, err := (&NodeLoader{Bin: bin}).Load(path)
	var verr *manifest.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Load error = %v, want *manifest.ValidationError", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		t.Fatal(err)
	}
	if verr.Source != abs {
		t.Errorf("Source = %q, want %q", verr.Source, abs)
	}
}

func TestNodeLoader_MissingNode(t *testing.T) {
	_, err := (&NodeLoader{Bin: filepath.Join(t.TempDir(), "no-such-node")}).Load("main.js")
	if err == nil {
		t.Fatal("expected error for missing node, got nil")
	}
}

func TestNodeLoader_RealNode(t *testing.T) {
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("Node.js not available, skipping")
	}

	path := writeManifest(t, `module.exports = {
  addons: ["@storybook/addon-essentials"],
  stories: [
    "./src/**/*.stories.js",
    { path: "./lib", recursive: false, match: /\.story\.js$/ },
  ],
};`)

	m, err := (&NodeLoader{}).LoadContext(context.Background(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := &manifest.Main{Stories: []manifest.StoryPattern{
		{Glob: "./src/**/*.stories.js"},
		{Specifier: &manifest.Specifier{Path: "./lib", Match: `/\.story\.js$/`}},
	}}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeVersion(t *testing.T) {
	bin := fakeBin(t, `echo v18.17.1`)
	v, err := NodeVersion(context.Background(), bin)
	if err != nil {
		t.Fatalf("NodeVersion error: %v", err)
	}
	if got := v.String(); got != "18.17.1" {
		t.Errorf("NodeVersion = %q, want %q", got, "18.17.1")
	}
}

func TestNodeVersion_Unparseable(t *testing.T) {
	bin := fakeBin(t, `echo "not a version"`)
	if _, err := NodeVersion(context.Background(), bin); err == nil {
		t.Fatal("expected error for unparseable version, got nil")
	}
}

func TestCheckNode(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		constraint string
		wantErr    bool
	}{
		{"default satisfied", "v16.20.0", "", false},
		{"default too old", "v10.24.1", "", true},
		{"custom satisfied", "v20.1.0", ">=18 <21", false},
		{"custom too new", "v22.0.0", ">=18 <21", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin := fakeBin(t, "echo "+tt.version)
			v, err := CheckNode(context.Background(), bin, tt.constraint)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s against %q, got nil", tt.version, tt.constraint)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckNode error: %v", err)
			}
			if got, want := "v"+v.String(), tt.version; got != want {
				t.Errorf("version = %q, want %q", got, want)
			}
		})
	}
}

func TestCheckNode_BadConstraint(t *testing.T) {
	if _, err := CheckNode(context.Background(), "node", "not-a-constraint!"); err == nil {
		t.Fatal("expected error for bad constraint, got nil")
	}
}
