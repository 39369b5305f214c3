package parser

import (
	"path/filepath"
	"strings"

	"github.com/dgallion1/linkorg/internal/linkdata"
)

// builder assembles a FileData from an ordered stream of headings, links and
// metadata. Every format parser feeds one.
type builder struct {
	file  *linkdata.FileData
	stack []stackEntry
}

type stackEntry struct {
	node  *linkdata.HeadingData
	level int
}

func newBuilder(filename string) *builder {
	name := filepath.Base(filename)
	return &builder{
		file: &linkdata.FileData{
			FileName:  name,
			FileTitle: strings.TrimSuffix(name, filepath.Ext(name)),
		},
	}
}

// heading opens a new section. It nests under the nearest open heading with
// a strictly lower level.
func (b *builder) heading(title string, level, line int) {
	if level < 1 {
		level = 1
	}
	node := &linkdata.HeadingData{Title: strings.TrimSpace(title), Level: level, LineNumber: line}

	// Pop stack until we find a parent with lower level.
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	if len(b.stack) == 0 {
		b.file.Heading = append(b.file.Heading, node)
	} else {
		parent := b.stack[len(b.stack)-1].node
		parent.Heading = append(parent.Heading, node)
	}
	b.stack = append(b.stack, stackEntry{node: node, level: level})
}

// close ends every open heading at the given level or deeper.
func (b *builder) close(level int) {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// depth returns the level of the innermost open heading, 0 at the root.
func (b *builder) depth() int {
	if len(b.stack) == 0 {
		return 0
	}
	return b.stack[len(b.stack)-1].level
}

// link attaches a link to the innermost open heading, or to the file root.
func (b *builder) link(l linkdata.LinkData) {
	if len(b.stack) == 0 {
		b.file.Links = append(b.file.Links, l)
		return
	}
	top := b.stack[len(b.stack)-1].node
	top.Links = append(top.Links, l)
}

func (b *builder) meta() *linkdata.FileMetaData {
	if b.file.FileMetaData == nil {
		b.file.FileMetaData = &linkdata.FileMetaData{}
	}
	return b.file.FileMetaData
}

func (b *builder) title(v string) {
	v = strings.TrimSpace(v)
	b.meta().FileTitle = linkdata.StringPtr(v)
	if v != "" {
		b.file.FileTitle = v
	}
}

func (b *builder) description(v string) {
	v = strings.TrimSpace(v)
	b.meta().FileDescription = linkdata.StringPtr(v)
	b.file.FileDescription = v
}

func (b *builder) date(v string) {
	v = unwrapDate(strings.TrimSpace(v))
	b.meta().FileCreationDate = linkdata.StringPtr(v)
	b.file.FileCreationDate = v
}

func (b *builder) tags(tags []string) {
	b.meta().FileTags = tags
	b.file.FileTags = tags
}

func (b *builder) finish() *linkdata.FileData {
	b.file.Normalize()
	return b.file
}

// unwrapDate strips org timestamp brackets: [2023-07-10 Mon] or <2023-07-10>.
func unwrapDate(v string) string {
	if len(v) >= 2 {
		if (v[0] == '[' && v[len(v)-1] == ']') || (v[0] == '<' && v[len(v)-1] == '>') {
			return strings.TrimSpace(v[1 : len(v)-1])
		}
	}
	return v
}

// splitTags accepts ":a:b:c:" as well as "a b c" and "a, b".
func splitTags(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ':' || r == ',' || r == ' ' || r == '\t'
	})
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			tags = append(tags, f)
		}
	}
	return tags
}
