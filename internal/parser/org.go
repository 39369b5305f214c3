package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/linkorg/internal/linkdata"
)

var (
	orgHeading = regexp.MustCompile(`^(\*+)\s+(\S.*?)\s*$`)
	orgLink    = regexp.MustCompile(`\[\[([^\[\]]+)\](?:\[([^\[\]]*)\])?\]`)
	orgKeyword = regexp.MustCompile(`(?i)^\s*#\+(title|description|date|filetags):\s*(.*?)\s*$`)
)

// OrgParser handles org-mode files line by line.
type OrgParser struct{}

func (p *OrgParser) Parse(r io.Reader, filename string) (*linkdata.FileData, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := newBuilder(filename)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		classifyOrgLine(b, scanner.Text(), lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.finish(), nil
}

// classifyOrgLine feeds one line to the builder. Lines that are neither a
// heading, a keyword nor contain a link are ignored.
func classifyOrgLine(b *builder, line string, lineNo int) {
	if m := orgHeading.FindStringSubmatch(line); m != nil {
		b.heading(m[2], len(m[1]), lineNo)
		return
	}
	if m := orgKeyword.FindStringSubmatch(line); m != nil {
		switch strings.ToLower(m[1]) {
		case "title":
			b.title(m[2])
		case "description":
			b.description(m[2])
		case "date":
			b.date(m[2])
		case "filetags":
			b.tags(splitTags(m[2]))
		}
		return
	}

	matches := orgLink.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return
	}
	spans := findSpans(orgLink, line)
	for i, m := range matches {
		target := strings.TrimSpace(m[1])
		name := strings.TrimSpace(m[2])
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
}
