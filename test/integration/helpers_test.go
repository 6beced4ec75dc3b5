//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"testing"
)

// testProject holds paths of a synthetic component catalog project.
type testProject struct {
	Root      string // project root
	ConfigDir string // .storybook
}

// setupProject creates a project with a .storybook configuration, a setup
// file, a manifest mixing glob and specifier entries, and story modules in
// and out of the declared patterns.
func setupProject(t *testing.T) *testProject {
	t.Helper()

	root := t.TempDir()
	p := &testProject{Root: root, ConfigDir: filepath.Join(root, ".storybook")}

	writeFile(t, filepath.Join(p.ConfigDir, "preview.js"), "export const parameters = {};\n")
	writeFile(t, filepath.Join(p.ConfigDir, "config.js"), "// legacy setup, shadowed by preview.js\n")
	writeFile(t, filepath.Join(p.ConfigDir, "main.js"), `module.exports = {
  addons: ["@storybook/addon-essentials"],
  stories: [
    "../src/**/*.stories.@(js|tsx)",
    {
      path: "../legacy",
      recursive: false,
      match: /\.story\.js$/,
    },
  ],
};
`)

	for _, f := range []string{
		"src/Button.stories.js",
		"src/Button.js",
		"src/forms/Input.stories.tsx",
		"src/forms/Input.stories.mdx",
		"legacy/Card.story.js",
		"legacy/nested/Tab.story.js",
	} {
		writeFile(t, filepath.Join(root, f), "export default {};\n")
	}

	return p
}

// writeFile creates parent directories and writes content to path.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
