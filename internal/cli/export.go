package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tabpanel/pkg/export"
	"github.com/matzehuels/tabpanel/pkg/render/sink"
)

// defaultSnapshotTimeout bounds how long export waits for the chart.
const defaultSnapshotTimeout = 30 * time.Second

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output     string // output directory, or "-" for stdout
	filename   string // document filename
	format     string // pdf, json, md or html
	pagePerTab bool   // start every tab on a new page
	noCache    bool   // skip the image cache
	timeout    time.Duration
}

// exportCommand creates the export command: render the chart headlessly, wait
// for its snapshot and write all tabs as one document.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{
		output:  ".",
		format:  sink.FormatPDF,
		timeout: defaultSnapshotTimeout,
	}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all tabs into one document",
		Long: `Export renders the chart, waits for its snapshot and writes every tab into a
single document. Images are embedded; images that cannot be fetched are left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output directory (- for stdout)")
	cmd.Flags().StringVarP(&opts.filename, "filename", "n", "", "document filename (default from config, tabs-export.pdf)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: pdf, json, md, html")
	cmd.Flags().BoolVar(&opts.pagePerTab, "page-per-tab", false, "start every tab on a new page")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the image cache")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "how long to wait for the chart")

	cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return sink.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runExport(ctx context.Context, opts exportOpts) error {
	logger := loggerFromContext(ctx)
	if err := sink.ValidateFormat(opts.format); err != nil {
		return err
	}
	if opts.filename != "" {
		c.config.Export.Filename = opts.filename
	}

	list, err := c.loadTabs()
	if err != nil {
		return err
	}
	chartCfg, err := c.loadChartConfig()
	if err != nil {
		return err
	}
	cc := c.openCache(ctx, opts.noCache)
	defer cc.Close()

	exp, err := c.newExporter(opts.format, cc, opts.pagePerTab)
	if err != nil {
		return err
	}
	v, err := c.newView(list, exp, chartCfg)
	if err != nil {
		return err
	}
	defer v.Destroy()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering chart...")
	spinner.Start()

	v.AfterViewInit()
	if v.ChartIndex() >= 0 {
		wctx, cancel := context.WithTimeout(ctx, opts.timeout)
		_, err := v.WaitSnapshot(wctx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				spinner.Stop()
				return ctx.Err()
			}
			spinner.Stop()
			// stdout carries the document; notices go to the log on stderr.
			if opts.output == "-" {
				logger.Warn("chart not ready, exporting without it", "timeout", opts.timeout)
			} else {
				printWarning("Chart not ready after %s, exporting without it", opts.timeout)
			}
			spinner = newSpinnerWithContext(ctx, "")
			spinner.Start()
		}
	}

	spinner.SetMessage("Exporting tabs...")
	doc, err := v.Export(ctx)
	if err != nil {
		spinner.StopWithError("Export failed")
		return err
	}

	var dst export.Downloader
	path := "stdout"
	if opts.output == "-" {
		dst = export.WriterDownloader{W: c.stdout}
	} else {
		fd := export.FileDownloader{Dir: opts.output}
		dst = fd
		path = fd.Path(doc)
	}
	if err := dst.Download(ctx, doc); err != nil {
		spinner.StopWithError("Write failed")
		return fmt.Errorf("write %s: %w", path, err)
	}
	spinner.Stop()

	if opts.output == "-" {
		prog.done(fmt.Sprintf("Exported %d tabs", len(list)))
		return nil
	}
	printSuccess("Exported %d tabs", len(list))
	printFile(path)
	printStats(doc.Stats, len(doc.Data))
	if doc.Format == sink.FormatPDF {
		if info, err := sink.Inspect(doc.Data); err == nil {
			printKeyValue("Pages", fmt.Sprint(info.Pages))
		} else {
			logger.Debug("inspect pdf", "err", err)
		}
	}
	if doc.Format == sink.FormatPDF && opts.output == "." {
		printNextStep("Open it", "open "+filepath.Base(path))
	}
	return nil
}
