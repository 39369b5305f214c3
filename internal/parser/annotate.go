package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	parenPattern    = regexp.MustCompile(`\(([^()]*)\)`)
	readTillPattern = regexp.MustCompile(`(?i)--\s*after\s*([\w.]*)`)
	urlPattern      = regexp.MustCompile(`https?://[^\s<>"'|)\]]+`)
)

// annotation is what a note line says about a link besides its target.
type annotation struct {
	description *string
	likeability *string
	readTill    int
}

// annotate reads the text that follows a link on its line:
//
//	(Good book) | (Must read) | -- after 20
//
// A parenthesised phrase ending in "read" is the likeability, the first other
// one is the description, and "-- after N" is the reading progress.
func annotate(rest string) annotation {
	var a annotation
	if m := readTillPattern.FindStringSubmatchIndex(rest); m != nil {
		a.readTill = parseReadTill(rest[m[2]:m[3]])
		rest = rest[:m[0]]
	}
	for _, m := range parenPattern.FindAllStringSubmatch(rest, -1) {
		text := strings.TrimSpace(m[1])
		if text == "" {
			continue
		}
		if strings.HasSuffix(strings.ToLower(text), "read") {
			if a.likeability == nil {
				a.likeability = &text
			}
			continue
		}
		if a.description == nil {
			a.description = &text
		}
	}
	return a
}

// parseReadTill returns the whole-number progress marker; decimals are
// truncated and anything non-numeric counts as unread.
func parseReadTill(v string) int {
	v = strings.Trim(v, ".")
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f < math.MaxInt32 {
		return int(f)
	}
	return 0
}

// span is a half-open byte range of link markup within a line.
type span struct{ start, end int }

// regionAfter returns the annotation text for the i-th link on a line: the
// text between the end of its markup and the start of the next link.
func regionAfter(line string, spans []span, i int) string {
	if i < 0 || i >= len(spans) {
		return stripSpans(line, spans)
	}
	end := len(line)
	if i+1 < len(spans) {
		end = spans[i+1].start
	}
	return line[spans[i].end:end]
}

// stripSpans removes all link markup from a line.
func stripSpans(line string, spans []span) string {
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		b.WriteString(line[prev:s.start])
		prev = s.end
	}
	b.WriteString(line[prev:])
	return b.String()
}

func findSpans(re *regexp.Regexp, line string) []span {
	idx := re.FindAllStringIndex(line, -1)
	out := make([]span, len(idx))
	for i, m := range idx {
		out[i] = span{m[0], m[1]}
	}
	return out
}
