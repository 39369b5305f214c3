package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgallion1/linkorg/internal/pipeline"
)

func newScanCmd(c *cli) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Parse the notes directory and update the link index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := c.openLibrary()
			if err != nil {
				return err
			}
			idx, err := c.openStore()
			if err != nil {
				return err
			}
			defer idx.Close()

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
			defer stop()

			job := pipeline.NewJob(force, "cli")
			pipeline.NewWorker(lib, idx, c.log, c.cfg.ParseConcurrency).Process(ctx, job)

			snap := job.Snapshot()
			p := snap.Progress
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scan %s: %s files found, %s parsed, %s unchanged, %s indexed, %s removed, %s links\n",
				snap.Status,
				humanize.Comma(int64(p.FilesFound)),
				humanize.Comma(int64(p.FilesParsed)),
				humanize.Comma(int64(p.FilesUnchanged)),
				humanize.Comma(int64(p.FilesIndexed)),
				humanize.Comma(int64(p.FilesRemoved)),
				humanize.Comma(int64(p.LinksIndexed)),
			)
			for _, e := range p.Errors {
				fmt.Fprintln(out, "  error:", e)
			}
			if snap.Status == pipeline.StatusFailed {
				return fmt.Errorf("scan failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-index files even when their content is unchanged")
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
