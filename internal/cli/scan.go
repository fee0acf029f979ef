package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fwmeta/pkg/catalog"
	"github.com/matzehuels/fwmeta/pkg/errors"
	"github.com/matzehuels/fwmeta/pkg/observability"
	"github.com/matzehuels/fwmeta/pkg/software"
	"github.com/matzehuels/fwmeta/pkg/zipmeta"
)

// scanOpts holds the command-line flags for the scan command.
type scanOpts struct {
	output      string // JSON output file; stdout when empty
	table       bool   // print a table instead of JSON
	interactive bool   // browse records in a terminal UI
	store       bool   // write records to the configured catalog
	noCache     bool   // bypass the detection cache
	bootFile    string // overrides the configured boot file
	category    string // overrides the configured category
}

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var opts scanOpts

	cmd := &cobra.Command{
		Use:   "scan <path-or-glob>",
		Short: "Extract metadata records from firmware packages",
		Long: `Scan walks one package, or every package matching a glob in the last path
element, descends into nested archives and emits one metadata record per boot
file found.

Records are printed as JSON unless --table or --interactive is given.`,
		Example: `  fwmeta scan a720-100c-1.4.1-4567-full.zip
  fwmeta scan 'downloads/*.zip' --table
  fwmeta scan 'downloads/*.zip' --category EOS --store`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.table && opts.interactive {
				return errors.New(errors.ErrCodeInvalidInput, "--table and --interactive are mutually exclusive")
			}
			return c.runScan(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write JSON records to file instead of stdout")
	cmd.Flags().BoolVar(&opts.table, "table", false, "print records as a table")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse records interactively")
	cmd.Flags().BoolVar(&opts.store, "store", false, "write records to the configured catalog")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the detection cache")
	cmd.Flags().StringVar(&opts.bootFile, "boot-file", "", "boot file name to look for (overrides category)")
	cmd.Flags().StringVar(&opts.category, "category", "", "product category, e.g. PS or EOS")

	return cmd
}

// scanItem is one scan outcome: a result or the error that replaced it.
type scanItem struct {
	res *zipmeta.Result
	err error
}

func (c *CLI) runScan(ctx context.Context, stdout io.Writer, path string, opts scanOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.category != "" {
		cfg.Category = opts.category
	}
	if opts.bootFile != "" {
		cfg.BootFile = opts.bootFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cc, err := newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()

	p, err := c.newProvider(cfg, cc)
	if err != nil {
		return err
	}

	var store catalog.Store
	if opts.store {
		if store, err = newStore(ctx, cfg); err != nil {
			return err
		}
		defer store.Close()
	}

	stats := &scanStats{}
	observability.SetScanHooks(stats)
	observability.SetCacheHooks(stats)
	defer observability.Reset()

	runID := catalog.NewRunID()
	logger.Debug("Scanning", "path", path, "boot_file", p.BootFile(), "run", runID)
	prog := newProgress(logger)

	var (
		items []scanItem
		errs  []error
	)
	for res, err := range p.Scan(ctx, path) {
		if err != nil {
			if errors.IsContext(err) {
				return err
			}
			logger.Warn("Skipped", "err", errors.UserMessage(err))
			items = append(items, scanItem{err: err})
			errs = append(errs, err)
			continue
		}

		logger.Info("Record", "archive", res.Archive, "entry", res.Entry, "camera", cameraLabel(res.Software))
		items = append(items, scanItem{res: res})

		if store != nil {
			if err := storeResult(ctx, store, runID, res); err != nil {
				return err
			}
		}
	}
	prog.done("Scanned " + plural(stats.packages, "package"))

	switch {
	case opts.interactive:
		if err := runBrowser(items); err != nil {
			return err
		}
	case opts.table:
		fmt.Fprintln(stdout, recordTable(items))
	default:
		if err := writeRecords(stdout, opts.output, items); err != nil {
			return err
		}
	}

	printStats(stats)
	if opts.output != "" {
		printFile(opts.output)
	}
	if store != nil {
		printDetail("Stored under run %s", runID)
		printNextStep("Browse stored records", appName+" serve")
	}
	if len(errs) > 0 {
		printWarning("%d errors during scan", len(errs))
	}
	return stderrors.Join(errs...)
}

func storeResult(ctx context.Context, store catalog.Store, runID string, res *zipmeta.Result) error {
	entry, err := catalog.NewEntry(runID, res, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := store.Put(ctx, entry); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store record for %s", res.Archive)
	}
	return nil
}

// writeRecords writes the successful records as a JSON array to path, or to
// stdout when path is empty.
func writeRecords(stdout io.Writer, path string, items []scanItem) error {
	records := make([]*software.Software, 0, len(items))
	for _, it := range items {
		if it.res != nil {
			records = append(records, it.res.Software)
		}
	}

	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func cameraLabel(sw *software.Software) string {
	if sw == nil || sw.Camera == nil {
		return ""
	}
	return sw.Camera.Platform + " " + sw.Camera.Revision
}

// =============================================================================
// Scan Statistics
// =============================================================================

// scanStats counts scan events for the summary line. Scans run on one
// goroutine, so no locking is needed.
type scanStats struct {
	observability.NoopScanHooks
	observability.NoopCacheHooks

	packages   int
	archives   int
	records    int
	failed     int
	mismatches int
	cacheHits  int
}

func (s *scanStats) OnArchiveEnter(_ context.Context, _ string, depth int) {
	if depth == 0 {
		s.packages++
	}
	s.archives++
}

func (s *scanStats) OnRecordComplete(_ context.Context, _, _ string, _ time.Duration, err error) {
	if err != nil {
		s.failed++
		return
	}
	s.records++
}

func (s *scanStats) OnMismatch(context.Context, string, string, string, string) {
	s.mismatches++
}

func (s *scanStats) OnCacheHit(context.Context, string) {
	s.cacheHits++
}
