package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/agentx-labs/storyshots/internal/branding"
	"github.com/spf13/viper"
)

const fileType = "yaml"

// Setting keys.
const (
	KeyConfigDir = "config_dir"
	KeyManifest  = "manifest"
	KeyLoader    = "loader"
	KeyNodeBin   = "node_bin"
	KeyLogLevel  = "log_level"
)

var defaults = map[string]string{
	KeyConfigDir: branding.ConfigDir(),
	KeyManifest:  "",
	KeyLoader:    "static",
	KeyNodeBin:   "node",
	KeyLogLevel:  "warn",
}

// allowed restricts keys with a closed set of values.
var allowed = map[string][]string{
	KeyLoader:   {"static", "node"},
	KeyLogLevel: {"debug", "info", "warn", "error"},
}

// Settings is a snapshot of the effective settings.
type Settings struct {
	ConfigDir string `json:"config_dir"`
	Manifest  string `json:"manifest"`
	Loader    string `json:"loader"`
	NodeBin   string `json:"node_bin"`
	LogLevel  string `json:"log_level"`
}

// Keys returns every known setting key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns the built-in value for key.
func Default(key string) string {
	return defaults[key]
}

// FilePath returns the settings file in the working directory.
func FilePath() string {
	return branding.SettingsFile()
}

// Load initializes Viper from the settings file at path (FilePath when
// empty) and the environment. A missing file is not an error; a malformed
// one is.
func Load(path string) error {
	if path == "" {
		path = FilePath()
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
	viper.SetConfigFile(path)
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading settings file %s: %w", path, err)
	}
	return nil
}

// Get returns a setting by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Current returns the effective settings.
func Current() Settings {
	return Settings{
		ConfigDir: Get(KeyConfigDir),
		Manifest:  Get(KeyManifest),
		Loader:    Get(KeyLoader),
		NodeBin:   Get(KeyNodeBin),
		LogLevel:  Get(KeyLogLevel),
	}
}

// Known reports whether key is a setting.
func Known(key string) bool {
	_, ok := defaults[key]
	return ok
}

// Validate reports whether value is acceptable for key.
func Validate(key, value string) error {
	if !Known(key) {
		return fmt.Errorf("unknown setting %q: known settings are %v", key, Keys())
	}
	if values, ok := allowed[key]; ok && !slices.Contains(values, value) {
		return fmt.Errorf("invalid value %q for %s: must be one of %v", value, key, values)
	}
	return nil
}

// Set writes a setting and saves the settings file Viper was loaded from.
func Set(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = FilePath()
	}
	if dir := filepath.Dir(configFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings directory %s: %w", dir, err)
		}
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
