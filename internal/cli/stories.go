package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/storyshots/internal/configure"
	"github.com/agentx-labs/storyshots/internal/registry"
)

var storiesJSON bool

var storiesCmd = &cobra.Command{
	Use:   "stories [path]",
	Short: "List the story modules a configuration registers",
	Long: `Apply a configuration the way a snapshot run would and list every story
module it registers. Setup files are recorded, not executed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStories,
}

func init() {
	storiesCmd.Flags().BoolVar(&storiesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(storiesCmd)
}

type storiesOutput struct {
	SetupFiles []string         `json:"setupFiles"`
	Stories    []registry.Story `json:"stories"`
}

func runStories(cmd *cobra.Command, args []string) error {
	r, err := newResolver()
	if err != nil {
		return err
	}
	path := configPath(args)

	rec := &registry.Recorder{}
	setup := registry.NewSetupRecorder(fsys)
	if err := configure.Configure(configure.Options{
		ConfigPath: path,
		Registry:   rec,
		Modules:    setup,
		Resolver:   r,
		Logger:     logger,
	}); err != nil {
		return hintConfigPath(err)
	}

	stories, err := rec.Stories()
	if err != nil {
		return err
	}
	out := storiesOutput{SetupFiles: setup.Files(), Stories: stories}
	if out.SetupFiles == nil {
		out.SetupFiles = []string{}
	}
	if out.Stories == nil {
		out.Stories = []registry.Story{}
	}

	if storiesJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling stories: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	if len(out.Stories) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No story modules found.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CONTEXT\tKEY")
	for _, s := range out.Stories {
		fmt.Fprintf(w, "%s\t%s\n", s.Context, s.Key)
	}
	return w.Flush()
}
