package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentx-labs/storyshots/internal/branding"
	"github.com/agentx-labs/storyshots/internal/config"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	settingsPath string
	verbose      bool
	logger       = log.New(io.Discard)
)

// settingFlags maps persistent flags to the settings they override.
var settingFlags = map[string]string{
	"config-dir": config.KeyConfigDir,
	"manifest":   config.KeyManifest,
	"loader":     config.KeyLoader,
	"node-bin":   config.KeyNodeBin,
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` resolves a component catalog configuration directory into the
setup files to load and the story modules to snapshot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(settingsPath); err != nil {
			return err
		}
		for name, key := range settingFlags {
			if err := viper.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
		logger = newLogger(cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settingsPath, "settings", "", "Settings file (default "+branding.SettingsFile()+")")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.String("config-dir", "", "Catalog configuration directory (default "+branding.ConfigDir()+")")
	flags.String("manifest", "", "Manifest file to read instead of main.js")
	flags.String("loader", "", "Manifest loader: static or node")
	flags.String("node-bin", "", "Node.js executable used by the node loader")
}

// newLogger builds the diagnostics logger from settings and --verbose.
func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Prefix: branding.CLIName()})
	level, err := log.ParseLevel(config.Get(config.KeyLogLevel))
	if err != nil {
		level = log.WarnLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	l.SetLevel(level)
	return l
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
