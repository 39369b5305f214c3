package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/linkorg/internal/linkdata"
	"golang.org/x/net/html"
)

// HTMLParser handles saved pages and browser bookmark exports.
//
// The tokenizer is used instead of html.Parse so that every link keeps the
// line it was written on.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*linkdata.FileData, error) {
	z := html.NewTokenizer(r)
	b := newBuilder(filename)
	st := &htmlState{b: b, line: 1}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse html: %w", z.Err())
		}
		startLine := st.line
		st.line += bytes.Count(z.Raw(), []byte{'\n'})

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			st.start(tok, startLine)
		case html.EndTagToken:
			tok := z.Token()
			st.end(tok.Data)
		case html.TextToken:
			st.text(string(z.Text()))
		}
	}
	st.flushLink()
	return b.finish(), nil
}

type folder struct{ depth, level int }

type htmlState struct {
	b    *builder
	line int

	skip    int // depth inside script/style
	inTitle bool
	title   strings.Builder

	headingLevel int
	headingLine  int
	heading      strings.Builder

	inAnchor   bool
	anchorHref string
	anchorLine int
	anchor     strings.Builder

	dlDepth int
	dlBase  int      // heading level open when the outermost <dl> started
	folders []folder // open bookmark folders

	pending *linkdata.LinkData
	inDD    bool
	dd      strings.Builder
}

func (s *htmlState) start(tok html.Token, line int) {
	switch tok.Data {
	case "script", "style":
		s.skip++
	case "title":
		s.inTitle = true
	case "meta":
		s.meta(tok)
	case "dl":
		s.flushLink()
		if s.dlDepth == 0 {
			s.dlBase = s.b.depth()
		}
		s.dlDepth++
	case "dt":
		s.flushLink()
	case "dd":
		s.inDD = true
		s.dd.Reset()
	case "a":
		if s.headingLevel > 0 {
			return
		}
		s.flushLink()
		href := strings.TrimSpace(attr(tok, "href"))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		s.inAnchor = true
		s.anchorHref = href
		s.anchorLine = line
		s.anchor.Reset()
	default:
		if level := headingLevel(tok.Data); level > 0 {
			s.flushLink()
			// Bookmark folders are <h3> inside nested <dl> lists.
			if s.dlDepth > 0 {
				level = s.dlBase + s.dlDepth
			}
			s.headingLevel = level
			s.headingLine = line
			s.heading.Reset()
		}
	}
}

func (s *htmlState) end(tag string) {
	switch tag {
	case "script", "style":
		if s.skip > 0 {
			s.skip--
		}
	case "title":
		s.inTitle = false
		if t := collapse(s.title.String()); t != "" {
			s.b.title(t)
		}
	case "dl":
		s.flushLink()
		if s.dlDepth > 0 {
			s.dlDepth--
		}
		for len(s.folders) > 0 && s.folders[len(s.folders)-1].depth >= s.dlDepth {
			s.b.close(s.folders[len(s.folders)-1].level)
			s.folders = s.folders[:len(s.folders)-1]
		}
	case "dd":
		s.inDD = false
	case "a":
		if !s.inAnchor {
			return
		}
		s.inAnchor = false
		name := collapse(s.anchor.String())
		if name == "" {
			name = s.anchorHref
		}
		s.pending = &linkdata.LinkData{Name: name, Link: s.anchorHref, LineNumber: s.anchorLine}
	default:
		if headingLevel(tag) > 0 && s.headingLevel > 0 {
			if t := collapse(s.heading.String()); t != "" {
				s.b.heading(t, s.headingLevel, s.headingLine)
				if s.dlDepth > 0 {
					s.folders = append(s.folders, folder{depth: s.dlDepth, level: s.headingLevel})
				}
			}
			s.headingLevel = 0
		}
	}
}

func (s *htmlState) text(t string) {
	switch {
	case s.skip > 0:
	case s.inTitle:
		s.title.WriteString(t)
	case s.headingLevel > 0:
		s.heading.WriteString(t)
	case s.inAnchor:
		s.anchor.WriteString(t)
	case s.inDD:
		s.dd.WriteString(t)
	}
}

func (s *htmlState) meta(tok html.Token) {
	content := strings.TrimSpace(attr(tok, "content"))
	switch strings.ToLower(attr(tok, "name")) {
	case "description":
		s.b.description(content)
	case "keywords":
		s.b.tags(splitTags(content))
	case "date":
		s.b.date(content)
	}
}

// flushLink emits the last anchor, with the <dd> text that followed it as
// description.
func (s *htmlState) flushLink() {
	defer func() {
		s.dd.Reset()
		s.inDD = false
	}()
	if s.pending == nil {
		return
	}
	l := *s.pending
	s.pending = nil
	if d := collapse(s.dd.String()); d != "" {
		l.Description = linkdata.StringPtr(d)
	}
	s.b.link(l)
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}
