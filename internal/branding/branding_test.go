package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if got := CLIName(); got != "storyshots" {
		t.Errorf("CLIName() = %q, want %q", got, "storyshots")
	}
	if got := ConfigDir(); got != ".storybook" {
		t.Errorf("ConfigDir() = %q, want %q", got, ".storybook")
	}
	if got := SettingsFile(); got != ".storyshots.yaml" {
		t.Errorf("SettingsFile() = %q, want %q", got, ".storyshots.yaml")
	}
}

func TestEnvVar(t *testing.T) {
	if got := EnvVar("loader"); got != "STORYSHOTS_LOADER" {
		t.Errorf("EnvVar(loader) = %q, want %q", got, "STORYSHOTS_LOADER")
	}
}
