package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/linkorg/internal/linkdata"
)

// TextParser handles plain text link dumps: every URL on a line is a link.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*linkdata.FileData, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := newBuilder(filename)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		urlLinks(b, scanner.Text(), lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.finish(), nil
}

// urlLinks emits one link per bare URL on a line. The text before the first
// URL names it; the text after each URL is its annotation.
func urlLinks(b *builder, line string, lineNo int) int {
	spans := findSpans(urlPattern, line)
	if len(spans) == 0 {
		return 0
	}
	for i, s := range spans {
		target := strings.TrimRight(line[s.start:s.end], ".,;:")
		name := ""
		if i == 0 {
			name = strings.Trim(strings.TrimSpace(line[:s.start]), "-:|*>\t ")
		}
		if name == "" {
			name = target
		}
		a := annotate(regionAfter(line, spans, i))
		b.link(linkdata.LinkData{
			Name:        name,
			Link:        target,
			Description: a.description,
			Likeability: a.likeability,
			ReadTill:    a.readTill,
			LineNumber:  lineNo,
		})
	}
	return len(spans)
}
