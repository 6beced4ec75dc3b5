package runtime

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/agentx-labs/storyshots/internal/manifest"
	"github.com/agentx-labs/storyshots/internal/resolve"
)

// Supported manifest loader identifiers.
const (
	LoaderStatic = "static"
	LoaderNode   = "node"
)

// Loader returns the manifest loader for name. fsys backs the static loader
// and nodeBin the node loader; an empty nodeBin means "node" on PATH.
func Loader(name string, fsys afero.Fs, nodeBin string) (resolve.ManifestLoader, error) {
	switch name {
	case LoaderStatic, "":
		if fsys == nil {
			fsys = afero.NewOsFs()
		}
		return manifest.StaticLoader{Fs: fsys}, nil
	case LoaderNode:
		return &NodeLoader{Bin: nodeBin}, nil
	default:
		return nil, fmt.Errorf("unknown manifest loader %q: supported loaders are %q and %q", name, LoaderStatic, LoaderNode)
	}
}
