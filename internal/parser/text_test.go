package parser

import (
	"strings"
	"testing"
)

func TestTextParser_URLLines(t *testing.T) {
	input := `Reading list

Go docs - https://go.dev/doc (Official) (Must read) -- after 3
https://a.example https://b.example (Good read)
no links here
`
	p := &TextParser{}
	f, err := p.Parse(strings.NewReader(input), "links.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Heading) != 0 {
		t.Errorf("expected no headings, got %d", len(f.Heading))
	}
	if len(f.Links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(f.Links))
	}
	docs := f.Links[0]
	if docs.Name != "Go docs" || docs.Link != "https://go.dev/doc" || docs.LineNumber != 3 {
		t.Errorf("unexpected link: %+v", docs)
	}
	if docs.Description == nil || *docs.Description != "Official" {
		t.Errorf("unexpected description %v", docs.Description)
	}
	if docs.Likeability == nil || *docs.Likeability != "Must read" || docs.ReadTill != 3 {
		t.Errorf("unexpected annotation: %+v", docs)
	}

	a, b := f.Links[1], f.Links[2]
	if a.Name != "https://a.example" || a.Likeability != nil {
		t.Errorf("unexpected first link on line 4: %+v", a)
	}
	if b.Name != "https://b.example" || b.Likeability == nil || *b.Likeability != "Good read" {
		t.Errorf("unexpected second link on line 4: %+v", b)
	}
}

func TestTextParser_TrailingPunctuation(t *testing.T) {
	p := &TextParser{}
	f, err := p.Parse(strings.NewReader("See https://go.dev/blog."), "a.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Links) != 1 || f.Links[0].Link != "https://go.dev/blog" {
		t.Fatalf("unexpected links %+v", f.Links)
	}
	if f.Links[0].Name != "See" {
		t.Errorf("expected leading text as name, got %q", f.Links[0].Name)
	}
}

func TestPDFLinks_PageHeadings(t *testing.T) {
	b := newBuilder("paper.pdf")
	pdfLinks(b, "intro\nsee https://a.example\fpage two\nhttps://b.example (Good read)\n\fno links")
	f := b.finish()

	if len(f.Heading) != 2 {
		t.Fatalf("expected 2 page headings, got %d", len(f.Heading))
	}
	if f.Heading[0].Title != "Page 1" || f.Heading[0].LineNumber != 2 {
		t.Errorf("unexpected heading: %+v", f.Heading[0])
	}
	if f.Heading[1].Title != "Page 2" || f.Heading[1].LineNumber != 4 {
		t.Errorf("unexpected heading: %+v", f.Heading[1])
	}
	if len(f.Heading[1].Links) != 1 || f.Heading[1].Links[0].Likeability == nil {
		t.Errorf("unexpected page 2 links: %+v", f.Heading[1].Links)
	}
}
