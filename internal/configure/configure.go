package configure

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/agentx-labs/storyshots/internal/branding"
	"github.com/agentx-labs/storyshots/internal/requirecontext"
	"github.com/agentx-labs/storyshots/internal/resolve"
)

// ErrNoRegistry is returned when Options carries no Registry.
var ErrNoRegistry = errors.New("no story registry")

// ErrNoModuleLoader is returned when setup files were found but Options
// carries no ModuleLoader to load them with.
var ErrNoModuleLoader = errors.New("no module loader for setup files")

// Registry accumulates story definitions.
type Registry interface {
	Configure(stories []requirecontext.Context, autoActivate bool) error
}

// ModuleLoader loads a setup file for its side effects.
type ModuleLoader interface {
	Require(path string) error
}

// ModuleLoaderFunc adapts a function to ModuleLoader.
type ModuleLoaderFunc func(path string) error

// Require calls f(path).
func (f ModuleLoaderFunc) Require(path string) error { return f(path) }

// Options describes one configuration pass.
type Options struct {
	// Config, when set, configures the registry directly. Nothing is
	// resolved and no file is touched.
	Config func(Registry) error
	// ConfigPath is the configuration directory or single setup file.
	// Defaults to .storybook.
	ConfigPath string
	// Manifest overrides the manifest file looked up in ConfigPath.
	Manifest string

	Registry Registry
	Modules  ModuleLoader
	// Resolver defaults to resolve.New over the OS filesystem.
	Resolver *resolve.Resolver
	Logger   *log.Logger
}

// Configure applies opts to opts.Registry.
func Configure(opts Options) error {
	if opts.Registry == nil {
		return ErrNoRegistry
	}
	if opts.Config != nil {
		return opts.Config(opts.Registry)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = branding.ConfigDir()
	}

	r := resolver(opts, logger)
	paths, err := r.Resolve(configPath)
	if err != nil {
		return fmt.Errorf("resolving configuration %s: %w", configPath, err)
	}

	if len(paths.Files) > 0 && opts.Modules == nil {
		return fmt.Errorf("loading %s: %w", paths.Files[0], ErrNoModuleLoader)
	}
	for _, file := range paths.Files {
		logger.Debug("require", "path", file)
		if err := opts.Modules.Require(file); err != nil {
			return fmt.Errorf("loading setup file %s: %w", file, err)
		}
	}

	if len(paths.Stories) == 0 {
		return nil
	}
	logger.Debug("configure registry", "contexts", len(paths.Stories))
	if err := opts.Registry.Configure(paths.Stories, false); err != nil {
		return fmt.Errorf("configuring registry: %w", err)
	}
	return nil
}

// resolver returns the resolver for opts without mutating a caller-owned one.
func resolver(opts Options, logger *log.Logger) *resolve.Resolver {
	var r resolve.Resolver
	if opts.Resolver != nil {
		r = *opts.Resolver
	} else {
		r = *resolve.New(nil)
	}
	if opts.Manifest != "" {
		r.ManifestOverride = opts.Manifest
	}
	if opts.Logger != nil {
		r.Logger = logger
	}
	return &r
}
