package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/linkorg/internal/linkdata"
	"github.com/dgallion1/linkorg/internal/parser"
)

func newShowCmd(c *cli) *cobra.Command {
	var (
		outline bool
		tree    bool
	)
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Parse one note file and print its link tree",
		Long: `show parses a single file and prints it as JSON. The path is taken as is
when it exists, otherwise relative to notes_dir.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.parseFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case tree:
				printTree(out, f)
				return nil
			case outline:
				outlines := linkdata.Outlines(f)
				if outlines == nil {
					outlines = []linkdata.Outline{}
				}
				return writeJSON(out, outlines)
			default:
				return writeJSON(out, f)
			}
		},
	}
	cmd.Flags().BoolVar(&outline, "outline", false, "print heading -> links outlines instead of the full tree")
	cmd.Flags().BoolVar(&tree, "tree", false, "print an indented text tree")
	return cmd
}

func (c *cli) parseFile(arg string) (*linkdata.FileData, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		p, err := parser.ForFile(arg)
		if err != nil {
			return nil, err
		}
		fh, err := os.Open(arg)
		if err != nil {
			return nil, err
		}
		defer fh.Close()
		return p.Parse(fh, arg)
	}

	lib, err := c.openLibrary()
	if err != nil {
		return nil, err
	}
	e, err := lib.Load(filepath.ToSlash(arg))
	if err != nil {
		return nil, err
	}
	return e.File, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printTree writes the file as org-style stars with links underneath.
func printTree(w io.Writer, f *linkdata.FileData) {
	fmt.Fprintf(w, "%s (%s)\n", f.FileTitle, f.FileName)
	if len(f.FileTags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(f.FileTags, ", "))
	}
	for _, l := range f.Links {
		fmt.Fprintln(w, formatLink(l, ""))
	}
	var walk func(h *linkdata.HeadingData)
	walk = func(h *linkdata.HeadingData) {
		if h == nil {
			return
		}
		fmt.Fprintf(w, "%s %s\n", strings.Repeat("*", h.Level), h.Title)
		indent := strings.Repeat(" ", h.Level+1)
		for _, l := range h.Links {
			fmt.Fprintln(w, formatLink(l, indent))
		}
		for _, c := range h.Heading {
			walk(c)
		}
	}
	for _, h := range f.Heading {
		walk(h)
	}
}

func formatLink(l linkdata.LinkData, indent string) string {
	var b strings.Builder
	b.WriteString(indent)
	b.WriteString("- ")
	b.WriteString(l.Name)
	if l.Name != l.Link {
		b.WriteString(" <" + l.Link + ">")
	}
	if l.Description != nil {
		b.WriteString(" (" + *l.Description + ")")
	}
	if l.Likeability != nil {
		b.WriteString(" [" + *l.Likeability + "]")
	}
	if l.ReadTill > 0 {
		fmt.Fprintf(&b, " read till %d", l.ReadTill)
	}
	return b.String()
}
