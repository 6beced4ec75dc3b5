// Package requirecontext enumerates module files under a directory the way
// a bundler's require.context does: keys are "./"-prefixed slash paths
// relative to the context directory, filtered by a regular expression.
package requirecontext

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// Enumerator builds lazy module collections. root is the directory the
// pattern was declared in and subPath is resolved against it.
type Enumerator interface {
	Context(root, subPath string, recursive bool, match *regexp.Regexp) Context
}

// Context is a lazy collection of module identifiers. No filesystem access
// happens until the collection is iterated.
type Context interface {
	// Describe returns the directive the context was built from.
	Describe() Description
	// All iterates matching keys in lexical path order.
	All() iter.Seq2[string, error]
	// Keys collects All into a slice.
	Keys() ([]string, error)
	// Resolve returns the absolute path a key refers to.
	Resolve(key string) string
}

// Description identifies a context.
type Description struct {
	Root      string `json:"root"`
	SubPath   string `json:"subPath"`
	Dir       string `json:"dir"`
	Recursive bool   `json:"recursive"`
	Match     string `json:"match"`
}

// FSEnumerator enumerates contexts on an afero filesystem.
type FSEnumerator struct {
	Fs afero.Fs
}

// NewFSEnumerator returns an enumerator over fsys; nil means the OS
// filesystem.
func NewFSEnumerator(fsys afero.Fs) *FSEnumerator {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FSEnumerator{Fs: fsys}
}

// Context implements Enumerator.
func (e *FSEnumerator) Context(root, subPath string, recursive bool, match *regexp.Regexp) Context {
	fsys := e.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	dir := subPath
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, filepath.FromSlash(subPath))
	}
	return &DirContext{
		fs:        fsys,
		root:      root,
		subPath:   subPath,
		dir:       filepath.Clean(dir),
		recursive: recursive,
		match:     match,
	}
}

// DirContext is the Context returned by FSEnumerator.
type DirContext struct {
	fs        afero.Fs
	root      string
	subPath   string
	dir       string
	recursive bool
	match     *regexp.Regexp
}

// errStop ends a walk early when the consumer stops iterating.
var errStop = errors.New("stop")

// Describe implements Context.
func (c *DirContext) Describe() Description {
	d := Description{
		Root:      c.root,
		SubPath:   c.subPath,
		Dir:       c.dir,
		Recursive: c.recursive,
	}
	if c.match != nil {
		d.Match = "/" + c.match.String() + "/"
	}
	return d
}

// All implements Context. A context directory that does not exist yields
// nothing.
func (c *DirContext) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		info, err := c.fs.Stat(c.dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return
			}
			yield("", fmt.Errorf("inspecting story directory %s: %w", c.dir, err))
			return
		}
		if !info.IsDir() {
			yield("", fmt.Errorf("story directory %s is not a directory", c.dir))
			return
		}

		err = afero.Walk(c.fs, c.dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if path != c.dir && !c.recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(c.dir, path)
			if err != nil {
				return nil
			}
			key := "./" + filepath.ToSlash(rel)
			if c.match != nil && !c.match.MatchString(key) {
				return nil
			}
			if !yield(key, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield("", fmt.Errorf("enumerating %s: %w", c.dir, err))
		}
	}
}

// Keys implements Context.
func (c *DirContext) Keys() ([]string, error) {
	var keys []string
	for key, err := range c.All() {
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Resolve implements Context.
func (c *DirContext) Resolve(key string) string {
	return filepath.Join(c.dir, filepath.FromSlash(strings.TrimPrefix(key, "./")))
}
