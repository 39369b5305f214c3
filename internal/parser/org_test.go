package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/linkorg/internal/linkdata"
)

const sampleOrg = `#+title: test title
#+description: Test description to check parsing
#+date: [2023-07-10 Mon 17:00]
#+filetags: :testing:rust:orgmode:linkorg:

* Level 1 heading
** Level 2 heading 1 under 1
| [[Link to test book 1][Table test book 1]] | (Good book) | (Must read) | -- after 20 |
| [[Link to test book 2][Table test book 2]] | | (Good read) | -- after 2 |
** Level 2 heading 2 under 1
| [[Link to test book 3][Table test book 3]] | (Mediocure book) | | -- after 8 |
| [[Link to test book 4][Table test book 4]] | | | -- after 9 |
* Level 1 Table heading
| Name | Description | Likeability | Progress |
| [[Link to test book 1][Table test book 1]] | (Good book) | (Must read) | -- after 20 |
| [[Link to test book 2][Table test book 2]] | | (Good read) | -- after 2 |
| [[Link to test book 3][Table test book 3]] | (Mediocure book) | | -- after 8 |
| [[Link to test book 4][Table test book 4]] | | | -- after 9 |
`

func parseOrg(t *testing.T, input string) *linkdata.FileData {
	t.Helper()
	p := &OrgParser{}
	f, err := p.Parse(strings.NewReader(input), "notes/test.org")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return f
}

func TestOrgParser_Metadata(t *testing.T) {
	f := parseOrg(t, sampleOrg)

	if f.FileName != "test.org" {
		t.Errorf("expected file name %q, got %q", "test.org", f.FileName)
	}
	if f.FileTitle != "test title" {
		t.Errorf("expected title %q, got %q", "test title", f.FileTitle)
	}
	if f.FileDescription != "Test description to check parsing" {
		t.Errorf("unexpected description %q", f.FileDescription)
	}
	if f.FileCreationDate != "2023-07-10 Mon 17:00" {
		t.Errorf("unexpected date %q", f.FileCreationDate)
	}
	want := []string{"testing", "rust", "orgmode", "linkorg"}
	if strings.Join(f.FileTags, ",") != strings.Join(want, ",") {
		t.Errorf("expected tags %v, got %v", want, f.FileTags)
	}
	if f.FileMetaData == nil || f.FileMetaData.FileTitle == nil || *f.FileMetaData.FileTitle != "test title" {
		t.Errorf("expected file_meta_data title to be recorded, got %+v", f.FileMetaData)
	}
}

func TestOrgParser_HeadingHierarchy(t *testing.T) {
	f := parseOrg(t, sampleOrg)

	if len(f.Heading) != 2 {
		t.Fatalf("expected 2 top-level headings, got %d", len(f.Heading))
	}
	h1 := f.Heading[0]
	if h1.Title != "Level 1 heading" || h1.Level != 1 || h1.LineNumber != 6 {
		t.Errorf("unexpected first heading: %+v", h1)
	}
	if len(h1.Heading) != 2 {
		t.Fatalf("expected 2 level 2 headings under the first heading, got %d", len(h1.Heading))
	}
	if h1.Heading[1].Title != "Level 2 heading 2 under 1" || h1.Heading[1].LineNumber != 10 {
		t.Errorf("unexpected second subheading: %+v", h1.Heading[1])
	}
	if len(h1.Links) != 0 {
		t.Errorf("expected no direct links under %q, got %d", h1.Title, len(h1.Links))
	}

	sub := h1.Heading[0]
	if len(sub.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(sub.Links))
	}
	l := sub.Links[0]
	if l.Name != "Table test book 1" || l.Link != "Link to test book 1" {
		t.Errorf("unexpected link: %+v", l)
	}
	if l.Description == nil || *l.Description != "Good book" {
		t.Errorf("expected description %q, got %v", "Good book", l.Description)
	}
	if l.Likeability == nil || *l.Likeability != "Must read" {
		t.Errorf("expected likeability %q, got %v", "Must read", l.Likeability)
	}
	if l.ReadTill != 20 || l.LineNumber != 8 {
		t.Errorf("expected read_till 20 on line 8, got %d on line %d", l.ReadTill, l.LineNumber)
	}
	if sub.Links[1].Description != nil {
		t.Errorf("expected no description, got %q", *sub.Links[1].Description)
	}

	table := f.Heading[1]
	if table.LineNumber != 13 || len(table.Links) != 4 {
		t.Fatalf("expected table heading on line 13 with 4 links, got line %d with %d", table.LineNumber, len(table.Links))
	}
	last := table.Links[3]
	if last.ReadTill != 9 || last.LineNumber != 18 || last.Likeability != nil {
		t.Errorf("unexpected last link: %+v", last)
	}
}

func TestOrgParser_ClassifyLink(t *testing.T) {
	f := parseOrg(t, "[[Link to test book][Table test book]] (Mediocure read)             -- after 8\n")

	if len(f.Links) != 1 {
		t.Fatalf("expected 1 root link, got %d", len(f.Links))
	}
	l := f.Links[0]
	if l.Name != "Table test book" || l.Link != "Link to test book" {
		t.Errorf("unexpected link: %+v", l)
	}
	if l.Likeability == nil || *l.Likeability != "Mediocure read" {
		t.Errorf("expected likeability, got %v", l.Likeability)
	}
	if l.Description != nil {
		t.Errorf("expected no description, got %q", *l.Description)
	}
	if l.ReadTill != 8 || l.LineNumber != 1 {
		t.Errorf("expected read_till 8 on line 1, got %d on line %d", l.ReadTill, l.LineNumber)
	}
}

func TestOrgParser_BareLinkAndSeveralPerLine(t *testing.T) {
	f := parseOrg(t, "* Refs\n[[https://go.dev]] and [[https://pkg.go.dev][pkg]] (API docs)\n")

	links := f.Heading[0].Links
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].Name != "https://go.dev" {
		t.Errorf("expected name to fall back to the target, got %q", links[0].Name)
	}
	if links[0].Description != nil {
		t.Errorf("annotation of the second link leaked into the first: %q", *links[0].Description)
	}
	if links[1].Description == nil || *links[1].Description != "API docs" {
		t.Errorf("expected description on second link, got %v", links[1].Description)
	}
}

func TestOrgParser_LevelSkipAndRootLinks(t *testing.T) {
	input := `[[https://root.example][root]]
* One
*** Three
[[https://deep.example][deep]]
** Two
* Back
`
	f := parseOrg(t, input)

	if len(f.Links) != 1 || f.Links[0].Name != "root" {
		t.Fatalf("expected one root link, got %+v", f.Links)
	}
	if len(f.Heading) != 2 {
		t.Fatalf("expected 2 top-level headings, got %d", len(f.Heading))
	}
	one := f.Heading[0]
	if len(one.Heading) != 2 {
		t.Fatalf("expected 2 children under One, got %d", len(one.Heading))
	}
	if one.Heading[0].Level != 3 || one.Heading[1].Level != 2 {
		t.Errorf("unexpected child levels %d, %d", one.Heading[0].Level, one.Heading[1].Level)
	}
	if len(one.Heading[0].Links) != 1 {
		t.Errorf("expected deep link under level 3 heading")
	}
	if err := f.Validate(); err != nil {
		t.Errorf("parsed tree does not validate: %v", err)
	}
}

func TestOrgParser_Empty(t *testing.T) {
	f := parseOrg(t, "")
	if f.FileTitle != "test" {
		t.Errorf("expected title to default to the base name, got %q", f.FileTitle)
	}
	if f.Heading == nil || f.Links == nil || f.FileTags == nil {
		t.Errorf("expected empty slices, got %+v", f)
	}
	if f.FileMetaData != nil {
		t.Errorf("expected no metadata, got %+v", f.FileMetaData)
	}
}
