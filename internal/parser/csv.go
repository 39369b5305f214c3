package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/linkorg/internal/linkdata"
)

// CSVParser imports a reading list exported as CSV. The first row names the
// columns; only the link column is required.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*linkdata.FileData, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	b := newBuilder(filename)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return b.finish(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	cols := csvColumns(header)
	if cols["link"] < 0 {
		return nil, fmt.Errorf("parse csv: no link or url column in header %v", header)
	}

	// Rows are grouped under one heading per distinct "heading" value, in
	// first-seen order.
	var order []string
	groups := make(map[string][]linkdata.LinkData)
	var root []linkdata.LinkData
	headingLines := make(map[string]int)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		get := func(key string) string {
			i := cols[key]
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		target := get("link")
		if target == "" {
			continue
		}
		l := linkdata.LinkData{
			Name:       get("name"),
			Link:       target,
			ReadTill:   parseReadTill(get("read_till")),
			LineNumber: line,
		}
		if l.Name == "" {
			l.Name = target
		}
		if v := get("description"); v != "" {
			l.Description = linkdata.StringPtr(v)
		}
		if v := get("likeability"); v != "" {
			l.Likeability = linkdata.StringPtr(v)
		}

		h := get("heading")
		if h == "" {
			root = append(root, l)
			continue
		}
		if _, ok := groups[h]; !ok {
			order = append(order, h)
			headingLines[h] = line
		}
		groups[h] = append(groups[h], l)
	}

	for _, l := range root {
		b.link(l)
	}
	for _, h := range order {
		b.heading(h, 1, headingLines[h])
		for _, l := range groups[h] {
			b.link(l)
		}
	}
	return b.finish(), nil
}

// csvColumns maps known column names (and their aliases) to indexes, -1 when
// absent.
func csvColumns(header []string) map[string]int {
	aliases := map[string]string{
		"name":        "name",
		"title":       "name",
		"link":        "link",
		"url":         "link",
		"href":        "link",
		"description": "description",
		"notes":       "description",
		"likeability": "likeability",
		"rating":      "likeability",
		"read_till":   "read_till",
		"progress":    "read_till",
		"heading":     "heading",
		"section":     "heading",
	}
	cols := map[string]int{"name": -1, "link": -1, "description": -1, "likeability": -1, "read_till": -1, "heading": -1}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		if canon, ok := aliases[key]; ok && cols[canon] < 0 {
			cols[canon] = i
		}
	}
	return cols
}
