package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tabpanel/pkg/buildinfo"
	"github.com/matzehuels/tabpanel/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level, plus debug logging of pipeline hooks
//
// The logger is attached to the command context and reachable through
// loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tabpanel shows tabbed content with a live chart and exports it",
		Long:         `Tabpanel serves a tabbed panel (one tab holds a pie chart, the others static markup) in the browser or the terminal, and exports every tab into a single PDF with images embedded.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			if c.Logger.GetLevel() <= LogDebug {
				registerDebugHooks(c.Logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.UserConfigPath()+")")
	flags.StringVar(&c.tabsFile, "tabs", "", "tabs file (TOML or YAML)")
	flags.StringVar(&c.chartData, "chart-data", "", "chart data file (JSON)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tabsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.chartCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
