package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tabpanel/pkg/cache"
	"github.com/matzehuels/tabpanel/pkg/chart"
	"github.com/matzehuels/tabpanel/pkg/observability"
)

// chartCommand creates the chart command, which renders the pie chart to PNG.
func (c *CLI) chartCommand() *cobra.Command {
	var (
		output        string
		width, height int
		noCache       bool
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the pie chart to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if width <= 0 {
				width = c.config.Chart.Width
			}
			if height <= 0 {
				height = c.config.Chart.Height
			}
			cfg, err := c.loadChartConfig()
			if err != nil {
				return err
			}
			cc := c.openCache(ctx, noCache)
			defer cc.Close()

			data, cached, err := c.renderChart(ctx, cc, cfg, width, height)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			printSuccess("Rendered chart with %d slices", len(cfg.Values))
			printFile(output)
			printCacheStatus(width, height, len(data), cached)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "chart.png", "output file")
	cmd.Flags().IntVar(&width, "width", 0, "canvas width in pixels (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "canvas height in pixels (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the chart cache")

	return cmd
}

// renderChart renders cfg at the given size, reusing a cached image when the
// same chart was rendered before.
func (c *CLI) renderChart(ctx context.Context, cc cache.Cache, cfg chart.Config, width, height int) ([]byte, bool, error) {
	key := cache.NewDefaultKeyer().ChartKey(cache.HashValue(struct {
		Config        chart.Config
		Width, Height int
	}{cfg, width, height}))

	if data, ok, err := cc.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "chart")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "chart")

	data, err := chart.Render(ctx, cfg, width, height)
	if err != nil {
		return nil, false, err
	}
	if err := cc.Set(ctx, key, data, c.config.Cache.TTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "chart", len(data))
	} else {
		c.Logger.Debug("cache chart", "err", err)
	}
	return data, false, nil
}
