package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgallion1/linkorg/internal/export"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		out   string
		s3Key string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every indexed file as JSON Lines to a file or S3 bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out != "" && s3Key != "" {
				return errors.New("--out and --s3-key are mutually exclusive")
			}
			idx, err := c.openStore()
			if err != nil {
				return err
			}
			defer idx.Close()

			var sink export.Sink = export.FileSink{}
			key, location := out, out
			if s3Key != "" {
				if !c.cfg.S3.Enabled() {
					return errors.New("s3 is not configured")
				}
				s3, err := export.NewS3Sink(c.cfg.S3)
				if err != nil {
					return err
				}
				sink, key, location = s3, s3Key, s3.Location(s3Key)
			}
			if key == "" {
				key, location = "linkorg.jsonl", "linkorg.jsonl"
			}

			res, err := export.Run(cmdContext(cmd), idx, sink, key)
			if err != nil {
				return err
			}
			c.log.Debug("export finished", "key", res.Key, "files", res.Files, "bytes", res.Bytes)
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s files (%s) to %s\n",
				humanize.Comma(int64(res.Files)), humanize.Bytes(uint64(res.Bytes)), location)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default linkorg.jsonl)")
	cmd.Flags().StringVar(&s3Key, "s3-key", "", "upload to the configured S3 bucket under this key")
	return cmd
}
