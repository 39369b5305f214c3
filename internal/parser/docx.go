package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/linkorg/internal/linkdata"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading styles become headings. A body
// paragraph yields its hyperlinks, or every URL in its text when it has none.
// Line numbers count paragraphs.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*linkdata.FileData, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "linkorg-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	b := newBuilder(filename)
	lineNo := 0
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		lineNo++

		level := docxHeadingLevel(para)
		text, pieces := docxParagraphText(doc, para)
		switch {
		case text == "":
		case level > 0:
			b.heading(text, level, lineNo)
		case docxStyle(para, "Title"):
			b.title(text)
		case hasDocxLink(pieces):
			docxLinks(b, pieces, lineNo)
		default:
			urlLinks(b, text, lineNo)
		}
	}
	return b.finish(), nil
}

func docxStyle(para *docx.Paragraph, name string) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	return strings.EqualFold(para.Properties.Style.Val, name)
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	}
	return 0
}

// docxPiece is a run of paragraph text, or a hyperlink when target is set.
type docxPiece struct {
	text   string
	target string
}

func hasDocxLink(pieces []docxPiece) bool {
	for _, p := range pieces {
		if p.target != "" {
			return true
		}
	}
	return false
}

// docxLinks emits each hyperlink with the annotations written after it, up
// to the next hyperlink.
func docxLinks(b *builder, pieces []docxPiece, lineNo int) {
	for i, p := range pieces {
		if p.target == "" {
			continue
		}
		var rest strings.Builder
		for _, q := range pieces[i+1:] {
			if q.target != "" {
				break
			}
			rest.WriteString(q.text)
		}
		name := strings.TrimSpace(p.text)
		if name == "" {
			name = p.target
		}
		a := annotate(rest.String())
		b.link(linkdata.LinkData{
			Name:        name,
			Link:        p.target,
			Description: a.description,
			Likeability: a.likeability,
			ReadTill:    a.readTill,
			LineNumber:  lineNo,
		})
	}
}

// docxParagraphText returns the paragraph's visible text and its pieces.
// Hyperlinks whose relationship cannot be resolved, such as bookmarks, count
// as plain text.
func docxParagraphText(doc *docx.Docx, para *docx.Paragraph) (string, []docxPiece) {
	var (
		buf    strings.Builder
		pieces []docxPiece
	)
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			text := docxRunText(c)
			buf.WriteString(text)
			pieces = append(pieces, docxPiece{text: text})
		case *docx.Hyperlink:
			text := docxRunText(&c.Run)
			if text == "" {
				text = c.Run.InstrText
			}
			buf.WriteString(text)
			target, err := doc.ReferTarget(c.ID)
			if err != nil {
				target = ""
			}
			pieces = append(pieces, docxPiece{text: text, target: strings.TrimSpace(target)})
		}
	}
	return strings.TrimSpace(buf.String()), pieces
}

func docxRunText(run *docx.Run) string {
	var buf strings.Builder
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
	return buf.String()
}
