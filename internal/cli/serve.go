package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tabpanel/pkg/render/sink"
	"github.com/matzehuels/tabpanel/pkg/server"
	"github.com/matzehuels/tabpanel/pkg/session"
	"github.com/matzehuels/tabpanel/pkg/view"
)

// sweepInterval is how often expired panel sessions are destroyed.
const sweepInterval = time.Minute

// serveCommand creates the serve command, which runs the HTTP panel.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tab panel over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if addr == "" {
				addr = c.config.Server.Addr
			}

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

			newView := func() (*view.View, error) {
				v, err := c.newView(list, exp, chartCfg)
				if err != nil {
					return nil, err
				}
				v.AfterViewInit()
				return v, nil
			}
			store := session.NewMemoryStore(newView, c.config.Server.SessionTTL, logger)
			defer store.Close()
			go store.Run(ctx, sweepInterval)

			printInfo("Serving %d tabs on %s", len(list), StyleLink.Render(displayURL(addr)))
			printDetail("Press Ctrl+C to stop")
			return server.New(store, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the image cache")

	return cmd
}

func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
