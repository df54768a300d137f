package cli

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tabpanel/pkg/export"
	"github.com/matzehuels/tabpanel/pkg/render/sink"
	"github.com/matzehuels/tabpanel/pkg/session"
)

// tabsCommand creates the tabs command, which runs the terminal panel.
func (c *CLI) tabsCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "Browse the tab panel in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			list, err := c.loadTabs()
			if err != nil {
				return err
			}
			chartCfg, err := c.loadChartConfig()
			if err != nil {
				return err
			}
			cc := c.openCache(ctx, noCache)
			defer cc.Close()

			exp, err := c.newExporter(sink.FormatPDF, cc, false)
			if err != nil {
				return err
			}
			v, err := c.newView(list, exp, chartCfg)
			if err != nil {
				return err
			}
			defer v.Destroy()

			state, err := session.NewFileStore("")
			if err != nil {
				logger.Debug("panel state disabled", "err", err)
				state = nil
			} else if st, err := state.Load(); err == nil && st != nil {
				for i, t := range list {
					if t.ID == st.TabID {
						v.SetIndex(i)
					}
				}
			}
			v.AfterViewInit()

			// Log lines would tear the alternate screen.
			logger.SetOutput(io.Discard)
			defer logger.SetOutput(os.Stderr)

			m := NewPanelModel(ctx, v, chartCfg, export.FileDownloader{Dir: output}, state, logger)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(PanelModel); ok && fm.Exported != "" {
				printSuccess("Exported tabs")
				printFile(fm.Exported)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".", "directory exports are written to")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the image cache")

	return cmd
}
