package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgallion1/linkorg/internal/store"
)

func newSearchCmd(c *cli) *cobra.Command {
	var (
		q      store.LinkQuery
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Search indexed links",
		Long: `search matches text against link names, targets, descriptions and the
headings above them. Filters combine with AND.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Text = strings.Join(args, " ")
			idx, err := c.openStore()
			if err != nil {
				return err
			}
			defer idx.Close()

			links, err := idx.SearchLinks(cmdContext(cmd), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, links)
			}
			for _, l := range links {
				fmt.Fprintln(out, formatRecord(l))
			}
			fmt.Fprintf(out, "%s links\n", humanize.Comma(int64(len(links))))
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Tag, "tag", "", "only files carrying this tag")
	cmd.Flags().StringVar(&q.Likeability, "likeability", "", "likeability contains this text")
	cmd.Flags().BoolVar(&q.Unread, "unread", false, "only links without reading progress")
	cmd.Flags().StringVar(&q.Path, "path", "", "only this file or directory")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum number of results (default 100)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func formatRecord(l store.LinkRecord) string {
	where := l.Path
	if len(l.Breadcrumb) > 0 {
		where += " > " + strings.Join(l.Breadcrumb, " > ")
	}
	line := fmt.Sprintf("%s:%d\t%s\t%s", l.Path, l.LineNumber, l.Name, l.Link)
	if l.Likeability != nil {
		line += "\t[" + *l.Likeability + "]"
	}
	if l.ReadTill > 0 {
		line += fmt.Sprintf("\tread till %d", l.ReadTill)
	}
	return line + "\t(" + where + ")"
}
