package runtime

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultNodeConstraint is the node version dynamic import needs.
const DefaultNodeConstraint = ">=12"

// NodeVersion runs `bin --version` and parses the result. An empty bin
// means DefaultNodeBin.
func NodeVersion(ctx context.Context, bin string) (*semver.Version, error) {
	if bin == "" {
		bin = DefaultNodeBin
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("locating node: %w", err)
	}

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return nil, fmt.Errorf("running %s --version: %w", path, err)
	}

	raw := strings.TrimSpace(string(out))
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing node version %q: %w", raw, err)
	}
	return v, nil
}

// CheckNode verifies that the installed node satisfies constraint and
// returns its version. An empty constraint means DefaultNodeConstraint.
func CheckNode(ctx context.Context, bin, constraint string) (*semver.Version, error) {
	if constraint == "" {
		constraint = DefaultNodeConstraint
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("parsing node constraint %q: %w", constraint, err)
	}

	v, err := NodeVersion(ctx, bin)
	if err != nil {
		return nil, err
	}
	if ok, errs := c.Validate(v); !ok {
		return v, fmt.Errorf("node %s does not satisfy %s: %v", v, constraint, errs)
	}
	return v, nil
}
