package parser

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/linkorg/internal/linkdata"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var mdKeyword = regexp.MustCompile(`(?i)^\s*(title|description|date|filetags|tags):\s*(.*?)\s*$`)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*linkdata.FileData, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	b := newBuilder(filename)

	// Front matter is blanked out rather than cut so that AST offsets still
	// map to the original line numbers.
	src, err = applyFrontMatter(b, src)
	if err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Linkify))
	doc := md.Parser().Parse(text.NewReader(src))

	lines := strings.Split(string(src), "\n")
	starts := lineStarts(src)
	lineOf := func(offset int) int {
		return sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
	}

	w := &mdWalker{b: b, src: src, lineOf: lineOf}
	firstHeading := 0
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, src)
			if title == "" || node.Lines().Len() == 0 {
				return ast.WalkSkipChildren, nil
			}
			line := lineOf(node.Lines().At(0).Start)
			if firstHeading == 0 {
				firstHeading = line
			}
			b.heading(title, node.Level, line)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			w.block(n)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	// Bare "title:" style keywords are only honoured before the first heading.
	preamble := lines
	if firstHeading > 0 {
		preamble = lines[:firstHeading-1]
	}
	for _, line := range preamble {
		if m := mdKeyword.FindStringSubmatch(line); m != nil {
			applyKeyword(b, m[1], m[2])
		}
	}

	return b.finish(), nil
}

// mdWalker collects the links of one paragraph-like block.
type mdWalker struct {
	b      *builder
	src    []byte
	lineOf func(int) int
}

// mdPiece is one run of inline content in document order: either a link or
// raw text. Links are atomic, their label is never annotation text.
type mdPiece struct {
	link *linkdata.LinkData
	text string
	eol  bool // the source line ends after this piece
}

// block emits every link in n with the annotation written after it, up to
// the next link or the end of its line.
func (w *mdWalker) block(n ast.Node) {
	pieces := w.pieces(n)
	for i, p := range pieces {
		if p.link == nil {
			continue
		}
		var rest strings.Builder
		for _, q := range pieces[i+1:] {
			if q.link != nil {
				break
			}
			rest.WriteString(q.text)
			if q.eol {
				break
			}
		}
		a := annotate(rest.String())
		l := *p.link
		l.Description = a.description
		l.Likeability = a.likeability
		l.ReadTill = a.readTill
		w.b.link(l)
	}
}

func (w *mdWalker) pieces(n ast.Node) []mdPiece {
	segs := n.Lines()
	if segs.Len() == 0 {
		return nil
	}
	idx := 0
	line := func() int {
		return w.lineOf(segs.At(min(idx, segs.Len()-1)).Start)
	}

	var out []mdPiece
	var walk func(ast.Node)
	walk = func(c ast.Node) {
		for ; c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Link:
				out = append(out, w.linkPiece(inlineText(v, w.src), string(v.Destination), line()))
			case *ast.AutoLink:
				dest := string(v.URL(w.src))
				if v.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(dest), "mailto:") {
					dest = "mailto:" + dest
				}
				out = append(out, w.linkPiece(string(v.Label(w.src)), dest, line()))
			case *ast.Image:
				// Images are not links.
			case *ast.Text:
				brk := v.SoftLineBreak() || v.HardLineBreak()
				out = append(out, mdPiece{text: string(v.Segment.Value(w.src)), eol: brk})
				if brk {
					idx++
				}
			case *ast.String:
				out = append(out, mdPiece{text: string(v.Value)})
			default:
				walk(c.FirstChild())
			}
		}
	}
	walk(n.FirstChild())
	return out
}

func (w *mdWalker) linkPiece(name, dest string, line int) mdPiece {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return mdPiece{}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = dest
	}
	return mdPiece{link: &linkdata.LinkData{Name: name, Link: dest, LineNumber: line}}
}

// inlineText concatenates the text content of an inline container.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(c ast.Node) {
		for ; c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Text:
				buf.Write(v.Segment.Value(src))
				if v.SoftLineBreak() || v.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(v.Value)
			case *ast.AutoLink:
				buf.Write(v.Label(src))
			default:
				walk(c.FirstChild())
			}
		}
	}
	walk(n.FirstChild())
	return strings.TrimSpace(buf.String())
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func applyKeyword(b *builder, key, value string) {
	switch strings.ToLower(key) {
	case "title":
		b.title(value)
	case "description":
		b.description(value)
	case "date":
		b.date(value)
	case "filetags", "tags":
		b.tags(splitTags(value))
	}
}

// applyFrontMatter reads a leading YAML block delimited by "---" lines and
// returns the source with that block replaced by empty lines.
func applyFrontMatter(b *builder, src []byte) ([]byte, error) {
	lines := strings.Split(string(src), "\n")
	if len(lines) < 2 || strings.TrimRight(lines[0], " \t\r") != "---" {
		return src, nil
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		l := strings.TrimRight(lines[i], " \t\r")
		if l == "---" || l == "..." {
			end = i
			break
		}
	}
	if end < 0 {
		return src, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &root); err != nil {
		return nil, err
	}
	if len(root.Content) > 0 && root.Content[0].Kind == yaml.MappingNode {
		m := root.Content[0]
		for i := 0; i+1 < len(m.Content); i += 2 {
			key, val := m.Content[i].Value, m.Content[i+1]
			switch val.Kind {
			case yaml.ScalarNode:
				applyKeyword(b, key, val.Value)
			case yaml.SequenceNode:
				if k := strings.ToLower(key); k == "tags" || k == "filetags" {
					tags := make([]string, 0, len(val.Content))
					for _, t := range val.Content {
						if t.Value != "" {
							tags = append(tags, t.Value)
						}
					}
					b.tags(tags)
				}
			}
		}
	}

	rest := strings.Join(lines[end+1:], "\n")
	return []byte(strings.Repeat("\n", end+1) + rest), nil
}
