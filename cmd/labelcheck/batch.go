package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/app"
	"github.com/joseph-ayodele/label-verifier/internal/batch"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/report"
)

type batchOptions struct {
	workers       int
	timeout       time.Duration
	includeHidden bool
	xlsxPath      string
	verbose       bool
	watch         bool
}

func newBatchCmd(g *globalOptions) *cobra.Command {
	o := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch DIR",
		Short: "Validate every submission directory (holding a form.json) under DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, g, o, args[0])
		},
	}
	f := cmd.Flags()
	f.IntVarP(&o.workers, "workers", "w", 2, "submissions validated concurrently")
	f.DurationVar(&o.timeout, "timeout", 3*time.Minute, "time limit per submission")
	f.BoolVar(&o.includeHidden, "include-hidden", false, "descend into hidden directories")
	f.StringVar(&o.xlsxPath, "xlsx", "", "write the batch summary as an XLSX workbook")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "print every submission's report")
	f.BoolVar(&o.watch, "watch", false, "keep running and re-validate submissions as their files change")
	return cmd
}

func runBatch(cmd *cobra.Command, g *globalOptions, o *batchOptions, root string) error {
	subs, stats, err := batch.Discover(root, !o.includeHidden)
	if err != nil {
		return err
	}
	g.logger.Info("submissions discovered",
		"root", root,
		"dirs_scanned", stats.Scanned,
		"submissions", stats.Submissions,
		"images", stats.Images,
		"failed", stats.Failed,
	)
	if len(subs) == 0 && !o.watch {
		return fmt.Errorf("no %s found under %s", batch.ManifestName, root)
	}

	a, err := app.New(g.cfg, g.logger)
	if err != nil {
		return err
	}
	queue := batch.NewQueue(a.Processor, g.logger,
		batch.WithWorkers(o.workers),
		batch.WithProcessTimeout(o.timeout),
	)
	outcomes := queue.Run(cmd.Context(), subs)

	out := cmd.OutOrStdout()
	opts := g.textOptions(out, true)
	if o.verbose {
		for _, oc := range outcomes {
			if oc.Err != nil {
				continue
			}
			fmt.Fprintf(out, "== %s ==\n", oc.Submission)
			if err := report.WriteText(out, oc.Report, opts); err != nil {
				return err
			}
		}
	}

	rows := batch.SummaryRows(outcomes)
	if err := report.WriteSummary(out, rows, opts); err != nil {
		return err
	}

	if o.xlsxPath != "" {
		data, err := report.WriteSummaryXLSX(rows)
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.xlsxPath, data, 0o644); err != nil {
			return common.WrapError(err, "write "+o.xlsxPath)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", o.xlsxPath, humanize.Bytes(uint64(len(data))))
	}

	if o.watch {
		return watchBatch(cmd, g, o, queue, root)
	}
	for _, oc := range outcomes {
		if oc.Err != nil || oc.Report.Status == constants.StatusNonCompliant {
			return errNonCompliant
		}
	}
	return nil
}

// watchBatch validates each submission the watcher reports until interrupted.
func watchBatch(cmd *cobra.Command, g *globalOptions, o *batchOptions, queue *batch.Queue, root string) error {
	subs, err := batch.Watch(cmd.Context(), batch.WatchConfig{Root: root, SkipHidden: !o.includeHidden}, g.logger)
	if err != nil {
		return err
	}
	g.logger.Info("watching for submissions", "root", root)

	out := cmd.OutOrStdout()
	opts := g.textOptions(out, o.verbose)
	for sub := range subs {
		oc := queue.Run(cmd.Context(), []batch.Submission{sub})[0]
		fmt.Fprintf(out, "== %s ==\n", oc.Submission)
		if oc.Err != nil {
			fmt.Fprintf(out, "failed: %v\n", oc.Err)
			continue
		}
		if err := report.WriteText(out, oc.Report, opts); err != nil {
			return err
		}
	}
	return nil
}
