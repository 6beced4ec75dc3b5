package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/storyshots/internal/config"
	"github.com/agentx-labs/storyshots/internal/manifest"
	"github.com/agentx-labs/storyshots/internal/pattern"
	"github.com/agentx-labs/storyshots/internal/resolve"
	"github.com/agentx-labs/storyshots/internal/runtime"
)

var checkNodeConstraint string

func init() {
	doctorCmd.Flags().StringVar(&checkNodeConstraint, "node-constraint", runtime.DefaultNodeConstraint, "Node.js version constraint for the node loader")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor [path]",
	Short: "Health check for a catalog configuration",
	Long: `Run diagnostic checks on a configuration directory: the directory exists,
a setup file is present, the manifest loads and passes schema validation,
every story pattern normalizes, and Node.js is usable when the node loader is
selected.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := &doctor{w: cmd.OutOrStdout(), cmd: cmd}
		d.run(configPath(args))
		if d.failures > 0 {
			return fmt.Errorf("doctor found %d problem(s)", d.failures)
		}
		return nil
	},
}

type doctor struct {
	w        io.Writer
	cmd      *cobra.Command
	failures int
}

func (d *doctor) ok(format string, a ...any) {
	fmt.Fprintf(d.w, "  [ OK ] "+format+"\n", a...)
}

func (d *doctor) info(format string, a ...any) {
	fmt.Fprintf(d.w, "  [INFO] "+format+"\n", a...)
}

func (d *doctor) fail(format string, a ...any) {
	d.failures++
	fmt.Fprintf(d.w, "  [FAIL] "+format+"\n", a...)
}

func (d *doctor) run(path string) {
	fmt.Fprintln(d.w, "Configuration:")
	abs, err := filepath.Abs(path)
	if err != nil {
		d.fail("Cannot resolve %s: %v", path, err)
		return
	}
	info, err := fsys.Stat(abs)
	if err != nil {
		d.fail("%s not found", abs)
		return
	}
	if !info.IsDir() {
		d.ok("%s is a single setup file", abs)
		return
	}
	d.ok("%s found", abs)

	r, err := newResolver()
	if err != nil {
		d.fail("%v", err)
		return
	}

	if preview := r.PreviewFile(abs); preview != "" {
		d.ok("Setup file %s", filepath.Base(preview))
	} else {
		d.info("No preview or config setup file")
	}

	mainPath := r.MainFile(abs)
	if mainPath == "" {
		d.info("No manifest; no stories will be registered")
	} else {
		d.checkManifest(abs, mainPath, r.Manifests)
	}

	if config.Get(config.KeyLoader) == runtime.LoaderNode {
		fmt.Fprintln(d.w, "Runtime:")
		v, err := runtime.CheckNode(d.cmd.Context(), config.Get(config.KeyNodeBin), checkNodeConstraint)
		if err != nil {
			d.fail("%v", err)
		} else {
			d.ok("node %s satisfies %s", v, checkNodeConstraint)
		}
	}
}

func (d *doctor) checkManifest(dir, path string, loader resolve.ManifestLoader) {
	if manifest.IsDocument(path) {
		result, err := manifest.ValidateFile(fsys, path)
		if err != nil {
			d.fail("Cannot read %s: %v", filepath.Base(path), err)
			return
		}
		if !result.Valid {
			d.schemaFailure(path, result.Issues)
			return
		}
		// Documents need no evaluation.
		loader = manifest.StaticLoader{Fs: fsys}
	}

	m, err := loader.Load(path)
	if err != nil {
		var verr *manifest.ValidationError
		if errors.As(err, &verr) {
			d.schemaFailure(path, verr.Issues)
			return
		}
		d.fail("Cannot load %s: %v", filepath.Base(path), err)
		return
	}
	d.ok("%s is valid (%d story pattern(s))", filepath.Base(path), len(m.Stories))

	for i, p := range m.Stories {
		if _, err := pattern.Normalize(dir, p); err != nil {
			d.fail("stories[%d] %s: %v", i, p, err)
		}
	}
}

func (d *doctor) schemaFailure(path string, issues []manifest.ValidationIssue) {
	d.fail("%s fails schema validation:", filepath.Base(path))
	for _, issue := range issues {
		fmt.Fprintf(d.w, "         %s: %s\n", issue.Path, issue.Message)
	}
}
