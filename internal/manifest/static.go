package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

// StaticLoader reads the stories list out of a manifest without executing
// it. It handles manifests that export an object literal through
// module.exports or export default and declare stories as an array literal,
// as well as JSON or YAML manifest documents.
type StaticLoader struct {
	// Fs is the filesystem to read from; nil means the OS filesystem.
	Fs afero.Fs
}

// Load reads and decodes the manifest at path. Schema violations are
// returned as *ValidationError with Source set to path.
func (l StaticLoader) Load(path string) (*Main, error) {
	fsys := l.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m *Main
	if IsDocument(path) {
		m, err = ParseDocument(data)
	} else {
		m, err = ParseSource(data)
	}
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Source = path
			return nil, verr
		}
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}

// IsDocument reports whether path names a JSON or YAML manifest document
// rather than a script.
func IsDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// ParseDocument decodes a JSON or YAML manifest document.
func ParseDocument(data []byte) (*Main, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest document: %w", err)
	}
	return Decode(raw)
}

// ParseSource extracts and decodes the stories export from manifest source.
// A manifest whose exported object has no stories property decodes to an
// empty Main.
func ParseSource(src []byte) (*Main, error) {
	s := &jsScanner{src: src}
	found, err := s.findExport()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no exported object literal found")
	}

	found, err = s.findProperty("stories")
	if err != nil {
		return nil, err
	}
	if !found {
		return &Main{}, nil
	}

	flow, err := s.copyArray()
	if err != nil {
		return nil, fmt.Errorf("reading stories: %w", err)
	}

	var stories interface{}
	if err := yaml.Unmarshal([]byte(flow), &stories); err != nil {
		return nil, fmt.Errorf("decoding stories %s: %w", flow, err)
	}

	return Decode(map[string]interface{}{"stories": stories})
}
