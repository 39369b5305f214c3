package parser

import (
	"bytes"
	"testing"

	"github.com/fumiama/go-docx"
)

func buildDocx(t *testing.T) []byte {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().Style("Title").AddText("Reading list")
	doc.AddParagraph().Style("Heading1").AddText("Papers")
	doc.AddParagraph().AddText("Spec https://go.dev/ref/spec (Must read)")
	doc.AddParagraph().Style("Heading2").AddText("Tools")
	para := doc.AddParagraph()
	para.AddLink("Delve", "https://github.com/go-delve/delve")
	para.AddText(" (Debugger) (Good read) -- after 3")
	doc.AddParagraph()
	doc.AddParagraph().Style("Heading1").AddText("Misc")

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXParser_HeadingsAndLinks(t *testing.T) {
	p := &DOCXParser{}
	f, err := p.Parse(bytes.NewReader(buildDocx(t)), "reading.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.FileTitle != "Reading list" {
		t.Errorf("expected title %q, got %q", "Reading list", f.FileTitle)
	}
	if len(f.Links) != 0 {
		t.Errorf("expected no root links, got %+v", f.Links)
	}
	if len(f.Heading) != 2 {
		t.Fatalf("expected 2 top-level headings, got %d", len(f.Heading))
	}

	papers, misc := f.Heading[0], f.Heading[1]
	if papers.Title != "Papers" || papers.Level != 1 || papers.LineNumber != 2 {
		t.Errorf("unexpected heading: %+v", papers)
	}
	if misc.Title != "Misc" || misc.Level != 1 || misc.LineNumber != 7 {
		t.Errorf("unexpected heading: %+v", misc)
	}

	if len(papers.Links) != 1 {
		t.Fatalf("expected 1 link under Papers, got %d", len(papers.Links))
	}
	spec := papers.Links[0]
	if spec.Name != "Spec" || spec.Link != "https://go.dev/ref/spec" || spec.LineNumber != 3 {
		t.Errorf("unexpected link: %+v", spec)
	}
	if deref(spec.Likeability) != "Must read" {
		t.Errorf("expected likeability %q, got %q", "Must read", deref(spec.Likeability))
	}

	if len(papers.Heading) != 1 {
		t.Fatalf("expected 1 sub-heading under Papers, got %d", len(papers.Heading))
	}
	tools := papers.Heading[0]
	if tools.Title != "Tools" || tools.Level != 2 || tools.LineNumber != 4 {
		t.Errorf("unexpected heading: %+v", tools)
	}
	if len(tools.Links) != 1 {
		t.Fatalf("expected 1 link under Tools, got %d", len(tools.Links))
	}
	delve := tools.Links[0]
	if delve.Name != "Delve" || delve.Link != "https://github.com/go-delve/delve" || delve.LineNumber != 5 {
		t.Errorf("unexpected hyperlink: %+v", delve)
	}
	if deref(delve.Description) != "Debugger" || deref(delve.Likeability) != "Good read" || delve.ReadTill != 3 {
		t.Errorf("unexpected hyperlink annotation: %+v", delve)
	}
}

func TestDOCXParser_Invalid(t *testing.T) {
	p := &DOCXParser{}
	if _, err := p.Parse(bytes.NewReader([]byte("not a zip")), "broken.docx"); err == nil {
		t.Fatal("expected error for non-docx input")
	}
}
