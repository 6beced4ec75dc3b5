// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	SettingsFile string `yaml:"settings_file"`
	EnvPrefix    string `yaml:"env_prefix"`
	ConfigDir    string `yaml:"config_dir"`
	GoModule     string `yaml:"go_module"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:      "storyshots",
			DisplayName:  "Storyshots",
			Description:  "Resolve component catalog configuration for snapshot test runs",
			SettingsFile: ".storyshots.yaml",
			EnvPrefix:    "STORYSHOTS",
			ConfigDir:    ".storybook",
			GoModule:     "github.com/agentx-labs/storyshots",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "storyshots").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// SettingsFile returns the per-project settings file name (e.g., ".storyshots.yaml").
func SettingsFile() string { load(); return defaults.SettingsFile }

// EnvPrefix returns the environment variable prefix (e.g., "STORYSHOTS").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// ConfigDir returns the conventional catalog configuration directory (e.g., ".storybook").
func ConfigDir() string { load(); return defaults.ConfigDir }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("loader") → "STORYSHOTS_LOADER".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
