package resolve

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/agentx-labs/storyshots/internal/manifest"
	"github.com/agentx-labs/storyshots/internal/pattern"
	"github.com/agentx-labs/storyshots/internal/requirecontext"
)

// ErrConfigPathNotFound is returned when the configuration path does not exist.
var ErrConfigPathNotFound = errors.New("config path not found")

// Setup file candidates, tried base name first, then extension.
var (
	supportedFilenames  = []string{"preview", "config"}
	supportedExtensions = []string{"ts", "tsx", "js", "jsx"}
)

// ManifestLoader evaluates a manifest file and returns its exports.
type ManifestLoader interface {
	Load(path string) (*manifest.Main, error)
}

// Paths is the outcome of resolving a configuration path.
type Paths struct {
	// Files holds the setup file to load: zero or one entry for a
	// directory, exactly one for a single file.
	Files []string
	// Manifest is the manifest that was read, or "" when none was found.
	Manifest string
	// Patterns are the raw stories entries of the manifest.
	Patterns []manifest.StoryPattern
	// Stories holds one context per pattern, in declaration order.
	Stories []requirecontext.Context
}

// Resolver locates setup files and expands manifest story patterns.
type Resolver struct {
	Fs         afero.Fs
	Enumerator requirecontext.Enumerator
	Manifests  ManifestLoader
	// ManifestOverride replaces main.js as the manifest looked up in a
	// configuration directory. Relative paths are joined to the directory.
	ManifestOverride string
	Logger           *log.Logger
}

// New returns a Resolver over fsys using the static manifest loader and the
// filesystem enumerator. A nil fsys means the OS filesystem.
func New(fsys afero.Fs) *Resolver {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Resolver{
		Fs:         fsys,
		Enumerator: requirecontext.NewFSEnumerator(fsys),
		Manifests:  manifest.StaticLoader{Fs: fsys},
		Logger:     log.New(io.Discard),
	}
}

// Resolve resolves input into setup files and story contexts.
func (r *Resolver) Resolve(input string) (*Paths, error) {
	configDir, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %s: %w", input, err)
	}

	info, err := r.fs().Stat(configDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigPathNotFound, configDir)
		}
		return nil, fmt.Errorf("inspecting config path %s: %w", configDir, err)
	}

	if !info.IsDir() {
		r.logger().Debug("single setup file", "path", configDir)
		return &Paths{Files: []string{configDir}}, nil
	}

	out := &Paths{}

	if preview := r.PreviewFile(configDir); preview != "" {
		r.logger().Debug("setup file", "path", preview)
		out.Files = append(out.Files, preview)
	}

	mainPath := r.MainFile(configDir)
	if mainPath == "" {
		return out, nil
	}

	r.logger().Debug("manifest", "path", mainPath)
	loader := r.manifests()
	if manifest.IsDocument(mainPath) {
		// Documents need no evaluation.
		loader = manifest.StaticLoader{Fs: r.fs()}
	}
	m, err := loader.Load(mainPath)
	if err != nil {
		return nil, fmt.Errorf("loading manifest %s: %w", mainPath, err)
	}
	out.Manifest = mainPath
	if m != nil {
		out.Patterns = m.Stories
	}

	for i, p := range out.Patterns {
		d, err := pattern.Normalize(configDir, p)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: stories[%d]: %w", mainPath, i, err)
		}
		ctx := r.enumerator().Context(d.Root, d.SubPath, d.Recursive, d.Match)
		r.logger().Debug("story context", "pattern", p.String(), "path", d.SubPath, "recursive", d.Recursive, "match", d.Match.String())
		out.Stories = append(out.Stories, ctx)
	}

	return out, nil
}

// PreviewFile returns the first existing setup file in configDir, or "".
func (r *Resolver) PreviewFile(configDir string) string {
	for _, name := range supportedFilenames {
		for _, ext := range supportedExtensions {
			candidate := filepath.Join(configDir, name+"."+ext)
			if r.isFile(candidate) {
				return candidate
			}
		}
	}
	return ""
}

// MainFile returns the manifest path for configDir, or "" when there is none.
func (r *Resolver) MainFile(configDir string) string {
	path := filepath.Join(configDir, manifest.FileName)
	if r.ManifestOverride != "" {
		path = r.ManifestOverride
		if !filepath.IsAbs(path) {
			path = filepath.Join(configDir, path)
		}
	}

	if r.isFile(path) {
		return path
	}
	if r.ManifestOverride != "" {
		r.logger().Warn("manifest override not found", "path", path)
	}
	return ""
}

// isFile reports whether path is a regular file. Symlinks are not followed;
// any error counts as "not a file".
func (r *Resolver) isFile(path string) bool {
	var (
		info os.FileInfo
		err  error
	)
	fsys := r.fs()
	if lst, ok := fsys.(afero.Lstater); ok {
		info, _, err = lst.LstatIfPossible(path)
	} else {
		info, err = fsys.Stat(path)
	}
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Zero-valued collaborators fall back to the defaults New installs.
func (r *Resolver) fs() afero.Fs {
	if r.Fs == nil {
		r.Fs = afero.NewOsFs()
	}
	return r.Fs
}

func (r *Resolver) enumerator() requirecontext.Enumerator {
	if r.Enumerator == nil {
		r.Enumerator = requirecontext.NewFSEnumerator(r.fs())
	}
	return r.Enumerator
}

func (r *Resolver) manifests() ManifestLoader {
	if r.Manifests == nil {
		r.Manifests = manifest.StaticLoader{Fs: r.fs()}
	}
	return r.Manifests
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger == nil {
		r.Logger = log.New(io.Discard)
	}
	return r.Logger
}
