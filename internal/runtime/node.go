package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/storyshots/internal/manifest"
)

// DefaultNodeBin is the node executable looked up on PATH.
const DefaultNodeBin = "node"

// evalScript imports the manifest given as the first argument and prints
// its stories as JSON. RegExp values are printed as their literal source.
const evalScript = `
const { pathToFileURL } = require("url");
import(pathToFileURL(process.argv[1]).href).then(
  (mod) => {
    const exp = mod && mod.default !== undefined ? mod.default : mod;
    const out = exp && exp.stories !== undefined ? { stories: exp.stories } : {};
    process.stdout.write(
      JSON.stringify(out, (_, v) => (v instanceof RegExp ? v.toString() : v))
    );
  },
  (err) => {
    console.error(err && err.stack ? err.stack : String(err));
    process.exit(1);
  }
);
`

// NodeLoader evaluates manifests with Node.js.
type NodeLoader struct {
	// Bin is the node executable; defaults to DefaultNodeBin.
	Bin string
	// Env, when set, replaces the process environment of node.
	Env []string
}

// Load implements resolve.ManifestLoader.
func (n *NodeLoader) Load(path string) (*manifest.Main, error) {
	return n.LoadContext(context.Background(), path)
}

// LoadContext evaluates the manifest at path and decodes its exports.
func (n *NodeLoader) LoadContext(ctx context.Context, path string) (*manifest.Main, error) {
	nodeBin, err := exec.LookPath(n.bin())
	if err != nil {
		return nil, fmt.Errorf("evaluating manifests requires Node.js: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest path %s: %w", path, err)
	}

	cmd := exec.CommandContext(ctx, nodeBin, "-e", evalScript, abs)
	cmd.Dir = filepath.Dir(abs)
	if n.Env != nil {
		cmd.Env = n.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("evaluating manifest %s: %w: %s", abs, err, msg)
		}
		return nil, fmt.Errorf("evaluating manifest %s: %w", abs, err)
	}

	var exports interface{}
	if err := json.Unmarshal(stdout.Bytes(), &exports); err != nil {
		return nil, fmt.Errorf("decoding exports of %s: %w", abs, err)
	}
	m, err := manifest.Decode(exports)
	if err != nil {
		var verr *manifest.ValidationError
		if errors.As(err, &verr) {
			verr.Source = abs
		}
		return nil, fmt.Errorf("decoding exports of %s: %w", abs, err)
	}
	return m, nil
}

func (n *NodeLoader) bin() string {
	if n.Bin == "" {
		return DefaultNodeBin
	}
	return n.Bin
}
