package configure

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/agentx-labs/storyshots/internal/requirecontext"
	"github.com/agentx-labs/storyshots/internal/resolve"
)

// countingFs counts every operation that reaches the filesystem.
type countingFs struct {
	afero.Fs
	ops int
}

func (c *countingFs) Open(name string) (afero.File, error) {
	c.ops++
	return c.Fs.Open(name)
}

func (c *countingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	c.ops++
	return c.Fs.OpenFile(name, flag, perm)
}

func (c *countingFs) Stat(name string) (os.FileInfo, error) {
	c.ops++
	return c.Fs.Stat(name)
}

func (c *countingFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	c.ops++
	fi, err := c.Fs.Stat(name)
	return fi, false, err
}

func (c *countingFs) Chtimes(name string, atime, mtime time.Time) error {
	c.ops++
	return c.Fs.Chtimes(name, atime, mtime)
}

// journal records loader and registry events in order.
type journal struct {
	events []string
	loads  []string
	calls  [][]requirecontext.Context
	auto   []bool
	fail   error
}

func (j *journal) Require(path string) error {
	j.events = append(j.events, "require "+filepath.Base(path))
	j.loads = append(j.loads, path)
	return j.fail
}

func (j *journal) Configure(stories []requirecontext.Context, autoActivate bool) error {
	j.events = append(j.events, "configure")
	j.calls = append(j.calls, stories)
	j.auto = append(j.auto, autoActivate)
	return nil
}

type failingRegistry struct{ err error }

func (f failingRegistry) Configure([]requirecontext.Context, bool) error { return f.err }

func memResolver(t *testing.T, files map[string]string) (*resolve.Resolver, *countingFs) {
	t.Helper()
	fsys := &countingFs{Fs: afero.NewMemMapFs()}
	for p, content := range files {
		if err := afero.WriteFile(fsys.Fs, p, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", p, err)
		}
	}
	return resolve.New(fsys), fsys
}

func TestConfigure_ConfigFunctionShortCircuits(t *testing.T) {
	r, fsys := memResolver(t, map[string]string{
		"/cfg/preview.js": "",
		"/cfg/main.js":    "module.exports = { stories: ['./*.stories.js'] };",
	})
	j := &journal{}
	calls := 0

	err := Configure(Options{
		Config: func(reg Registry) error {
			calls++
			if reg != j {
				t.Errorf("Config received a different registry")
			}
			return nil
		},
		ConfigPath: "/cfg",
		Registry:   j,
		Modules:    j,
		Resolver:   r,
	})
	if err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Config called %d times, want 1", calls)
	}
	if fsys.ops != 0 {
		t.Errorf("filesystem operations = %d, want 0", fsys.ops)
	}
	if len(j.events) != 0 {
		t.Errorf("events = %v, want none", j.events)
	}
}

func TestConfigure_ConfigFunctionError(t *testing.T) {
	boom := errors.New("boom")
	err := Configure(Options{
		Config:   func(Registry) error { return boom },
		Registry: &journal{},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Configure error = %v, want %v", err, boom)
	}
}

func TestConfigure_NoRegistry(t *testing.T) {
	if err := Configure(Options{ConfigPath: "/cfg"}); !errors.Is(err, ErrNoRegistry) {
		t.Fatalf("Configure error = %v, want ErrNoRegistry", err)
	}
}

func TestConfigure_LoadsSetupThenRegisters(t *testing.T) {
	r, _ := memResolver(t, map[string]string{
		"/cfg/preview.ts":           "",
		"/cfg/config.js":            "",
		"/cfg/main.js":              "module.exports = { stories: ['./src/*.stories.js', '../lib/**/*.story.tsx'] };",
		"/cfg/src/Button.stories.js": "",
		"/lib/x/Card.story.tsx":     "",
	})
	j := &journal{}

	if err := Configure(Options{ConfigPath: "/cfg", Registry: j, Modules: j, Resolver: r}); err != nil {
		t.Fatalf("Configure error: %v", err)
	}

	if diff := cmp.Diff([]string{"require preview.ts", "configure"}, j.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{false}, j.auto); diff != "" {
		t.Errorf("autoActivate mismatch (-want +got):\n%s", diff)
	}
	if got := len(j.calls[0]); got != 2 {
		t.Fatalf("registered contexts = %d, want 2", got)
	}

	var dirs []string
	for _, ctx := range j.calls[0] {
		dirs = append(dirs, ctx.Describe().Dir)
	}
	if diff := cmp.Diff([]string{"/cfg/src", "/lib"}, dirs); diff != "" {
		t.Errorf("context dirs mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigure_NoStoriesSkipsRegistry(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  []string
	}{
		{"setup only", map[string]string{"/cfg/preview.js": ""}, []string{"require preview.js"}},
		{"empty stories", map[string]string{
			"/cfg/config.jsx": "",
			"/cfg/main.js":    "export default { stories: [] };",
		}, []string{"require config.jsx"}},
		{"empty dir", map[string]string{"/cfg/README.md": ""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := memResolver(t, tt.files)
			j := &journal{}
			if err := Configure(Options{ConfigPath: "/cfg", Registry: j, Modules: j, Resolver: r}); err != nil {
				t.Fatalf("Configure error: %v", err)
			}
			if diff := cmp.Diff(tt.want, j.events); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigure_SingleFile(t *testing.T) {
	r, _ := memResolver(t, map[string]string{
		"/cfg/setup.js": "",
		"/cfg/main.js":  "module.exports = { stories: ['./*.stories.js'] };",
	})
	j := &journal{}

	if err := Configure(Options{ConfigPath: "/cfg/setup.js", Registry: j, Modules: j, Resolver: r}); err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	if diff := cmp.Diff([]string{"require setup.js"}, j.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigure_SetupErrorStopsBeforeRegistry(t *testing.T) {
	r, _ := memResolver(t, map[string]string{
		"/cfg/preview.js":        "",
		"/cfg/main.js":           "module.exports = { stories: ['./*.stories.js'] };",
		"/cfg/Button.stories.js": "",
	})
	boom := errors.New("syntax error")
	j := &journal{fail: boom}

	err := Configure(Options{ConfigPath: "/cfg", Registry: j, Modules: j, Resolver: r})
	if !errors.Is(err, boom) {
		t.Fatalf("Configure error = %v, want wrapped %v", err, boom)
	}
	if len(j.calls) != 0 {
		t.Errorf("registry configured after setup failure")
	}
}

func TestConfigure_MissingModuleLoader(t *testing.T) {
	r, _ := memResolver(t, map[string]string{"/cfg/preview.js": ""})
	err := Configure(Options{ConfigPath: "/cfg", Registry: &journal{}, Resolver: r})
	if !errors.Is(err, ErrNoModuleLoader) {
		t.Fatalf("Configure error = %v, want ErrNoModuleLoader", err)
	}
}

func TestConfigure_RegistryErrorPropagates(t *testing.T) {
	r, _ := memResolver(t, map[string]string{
		"/cfg/main.js": "module.exports = { stories: ['./*.stories.js'] };",
	})
	boom := errors.New("duplicate story")
	err := Configure(Options{ConfigPath: "/cfg", Registry: failingRegistry{boom}, Resolver: r})
	if !errors.Is(err, boom) {
		t.Fatalf("Configure error = %v, want wrapped %v", err, boom)
	}
}

func TestConfigure_MissingConfigPath(t *testing.T) {
	r, _ := memResolver(t, nil)
	err := Configure(Options{ConfigPath: "/nope", Registry: &journal{}, Resolver: r})
	if !errors.Is(err, resolve.ErrConfigPathNotFound) {
		t.Fatalf("Configure error = %v, want ErrConfigPathNotFound", err)
	}
}

func TestConfigure_ManifestOverride(t *testing.T) {
	r, _ := memResolver(t, map[string]string{
		"/cfg/main.js":       "module.exports = { stories: ['./a/*.stories.js'] };",
		"/cfg/other.main.js": "module.exports = { stories: ['./b/*.stories.js'] };",
	})
	j := &journal{}

	if err := Configure(Options{ConfigPath: "/cfg", Manifest: "other.main.js", Registry: j, Resolver: r}); err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	if got := j.calls[0][0].Describe().Dir; got != "/cfg/b" {
		t.Errorf("Dir = %q, want /cfg/b", got)
	}
	if r.ManifestOverride != "" {
		t.Errorf("caller resolver mutated: ManifestOverride = %q", r.ManifestOverride)
	}
}

func TestConfigure_DefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".storybook"), 0o755); err != nil {
		t.Fatal(err)
	}
	preview := filepath.Join(dir, ".storybook", "preview.js")
	if err := os.WriteFile(preview, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	j := &journal{}
	if err := Configure(Options{Registry: j, Modules: ModuleLoaderFunc(j.Require)}); err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	if diff := cmp.Diff([]string{preview}, j.loads); diff != "" {
		t.Errorf("loads mismatch (-want +got):\n%s", diff)
	}
}
