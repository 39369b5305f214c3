package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newTagsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List file tags with the number of files carrying each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := c.openStore()
			if err != nil {
				return err
			}
			defer idx.Close()

			tags, err := idx.Tags(cmdContext(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range tags {
				fmt.Fprintf(out, "%s\t%s\n", t.Tag, humanize.Comma(int64(t.Files)))
			}
			return nil
		},
	}
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print index totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := c.openStore()
			if err != nil {
				return err
			}
			defer idx.Close()

			st, err := idx.Stats(cmdContext(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "files:   ", humanize.Comma(int64(st.Files)))
			fmt.Fprintln(out, "headings:", humanize.Comma(int64(st.Headings)))
			fmt.Fprintln(out, "links:   ", humanize.Comma(int64(st.Links)))
			fmt.Fprintln(out, "unread:  ", humanize.Comma(int64(st.Unread)))
			fmt.Fprintln(out, "tags:    ", humanize.Comma(int64(st.Tags)))
			if !st.LastIndexed.IsZero() {
				fmt.Fprintln(out, "indexed: ", humanize.Time(st.LastIndexed))
			} else {
				fmt.Fprintln(out, "indexed:  never")
			}
			return nil
		},
	}
}
