package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/storyshots/internal/manifest"
	"github.com/agentx-labs/storyshots/internal/requirecontext"
)

var (
	resolveJSON bool
	resolveKeys bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [path]",
	Short: "Show the setup files and story contexts of a configuration",
	Long: `Resolve a configuration directory (or a single setup file) and print the
setup file that would be loaded and the normalized story contexts declared by
its manifest. With --keys every context is enumerated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Output in JSON format")
	resolveCmd.Flags().BoolVar(&resolveKeys, "keys", false, "Enumerate the modules of every context")
	rootCmd.AddCommand(resolveCmd)
}

// resolveOutput is the JSON shape of the resolve command.
type resolveOutput struct {
	ConfigPath string         `json:"configPath"`
	Files      []string       `json:"files"`
	Manifest   string         `json:"manifest,omitempty"`
	Contexts   []contextEntry `json:"contexts"`
}

type contextEntry struct {
	Pattern manifest.StoryPattern `json:"pattern"`
	requirecontext.Description
	Keys []string `json:"keys,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	r, err := newResolver()
	if err != nil {
		return err
	}

	path := configPath(args)
	paths, err := r.Resolve(path)
	if err != nil {
		return hintConfigPath(err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving config path %s: %w", path, err)
	}
	out := resolveOutput{
		ConfigPath: abs,
		Files:      paths.Files,
		Manifest:   paths.Manifest,
		Contexts:   []contextEntry{},
	}
	if out.Files == nil {
		out.Files = []string{}
	}
	for i, ctx := range paths.Stories {
		entry := contextEntry{Pattern: paths.Patterns[i], Description: ctx.Describe()}
		if resolveKeys {
			keys, err := ctx.Keys()
			if err != nil {
				return fmt.Errorf("enumerating %s: %w", entry.Dir, err)
			}
			entry.Keys = keys
		}
		out.Contexts = append(out.Contexts, entry)
	}

	if resolveJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling resolution: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	return printResolution(cmd.OutOrStdout(), out)
}

func printResolution(w io.Writer, out resolveOutput) error {
	fmt.Fprintf(w, "Config path: %s\n", out.ConfigPath)
	if len(out.Files) == 0 {
		fmt.Fprintln(w, "Setup file:  none")
	}
	for _, f := range out.Files {
		fmt.Fprintf(w, "Setup file:  %s\n", f)
	}
	if out.Manifest == "" {
		fmt.Fprintln(w, "Manifest:    none")
		return nil
	}
	fmt.Fprintf(w, "Manifest:    %s\n", out.Manifest)

	if len(out.Contexts) == 0 {
		fmt.Fprintln(w, "\nNo stories declared.")
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tDIR\tRECURSIVE\tMATCH")
	for _, c := range out.Contexts {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", c.Pattern, c.Dir, c.Recursive, c.Match)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !resolveKeys {
		return nil
	}
	for _, c := range out.Contexts {
		fmt.Fprintf(w, "\n%s (%d)\n", c.Dir, len(c.Keys))
		for _, k := range c.Keys {
			fmt.Fprintf(w, "  %s\n", k)
		}
	}
	return nil
}
