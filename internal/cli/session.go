package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/agentx-labs/storyshots/internal/branding"
	"github.com/agentx-labs/storyshots/internal/config"
	"github.com/agentx-labs/storyshots/internal/resolve"
	"github.com/agentx-labs/storyshots/internal/runtime"
)

// fsys is the filesystem every command works on.
var fsys afero.Fs = afero.NewOsFs()

// configPath returns the configuration path named on the command line, or
// the config_dir setting.
func configPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return config.Get(config.KeyConfigDir)
}

// newResolver builds a resolver from the effective settings.
func newResolver() (*resolve.Resolver, error) {
	s := config.Current()
	loader, err := runtime.Loader(s.Loader, fsys, s.NodeBin)
	if err != nil {
		return nil, err
	}
	r := resolve.New(fsys)
	r.Manifests = loader
	r.ManifestOverride = s.Manifest
	r.Logger = logger
	return r, nil
}

// hintConfigPath points at the setting that names the configuration
// directory when err reports that it does not exist.
func hintConfigPath(err error) error {
	if errors.Is(err, resolve.ErrConfigPathNotFound) {
		return fmt.Errorf("%w (pass a path, --config-dir, or set %s)", err, branding.EnvVar(config.KeyConfigDir))
	}
	return err
}
