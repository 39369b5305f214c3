package linkdata

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func sampleFile() *FileData {
	return &FileData{
		FileName: "reading.org",
		FileMetaData: &FileMetaData{
			FileTitle: StringPtr("Reading"),
			FileTags:  []string{"books", "papers"},
		},
		FileTitle: "Reading",
		FileTags:  []string{"books", "papers"},
		Links: []LinkItem{
			{Name: "Inbox", Link: "https://example.com/inbox", LineNumber: 3},
		},
		Heading: []*HeadingData{
			{
				Title:      "Books",
				Level:      1,
				LineNumber: 5,
				Links: []LinkData{
					{Name: "SICP", Link: "https://example.com/sicp", ReadTill: 120, LineNumber: 6, Likeability: StringPtr("Must read")},
				},
				Heading: []*HeadingItem{
					{
						Title:      "Fiction",
						Level:      2,
						LineNumber: 7,
						Links: []LinkData{
							{Name: "Dune", Link: "https://example.com/dune", Description: StringPtr("sand"), LineNumber: 8},
						},
					},
				},
			},
		},
	}
}

func TestLinkData_RoundTrip(t *testing.T) {
	in := LinkData{Name: "a", Link: "http://x", ReadTill: 3, LineNumber: 10}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "description") || strings.Contains(string(b), "likeability") {
		t.Errorf("expected absent optional fields to be omitted, got %s", b)
	}
	var out LinkData
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch: %+v != %+v", in, out)
	}
}

func TestLinkData_OptionalFieldsSurvive(t *testing.T) {
	in := LinkData{Name: "a", Link: "http://x", Description: StringPtr(""), Likeability: StringPtr("Good read")}
	b, _ := json.Marshal(in)
	var out LinkData
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Description == nil || *out.Description != "" {
		t.Errorf("expected present-but-empty description to survive, got %v", out.Description)
	}
	if out.Likeability == nil || *out.Likeability != "Good read" {
		t.Errorf("expected likeability to survive, got %v", out.Likeability)
	}
}

func TestFileData_RoundTrip(t *testing.T) {
	in := sampleFile()
	in.Normalize()
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out FileData
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, &out) {
		t.Errorf("round trip mismatch:\n in=%s", b)
	}
}

func TestFileData_MetaDataOmittedWhenAbsent(t *testing.T) {
	f := &FileData{FileName: "x.md"}
	f.Normalize()
	b, _ := json.Marshal(f)
	if strings.Contains(string(b), "file_meta_data") {
		t.Errorf("expected file_meta_data to be omitted, got %s", b)
	}
	if !strings.Contains(string(b), `"heading":[]`) {
		t.Errorf("expected empty heading array, got %s", b)
	}
}

func TestHeadingData_DeepNesting(t *testing.T) {
	const depth = 200
	root := &HeadingData{Title: "h1", Level: 1}
	cur := root
	for i := 2; i <= depth; i++ {
		child := &HeadingData{Title: "h", Level: i}
		cur.Heading = []*HeadingItem{child}
		cur = child
	}
	cur.Links = []LinkData{{Name: "leaf", Link: "https://leaf"}}
	f := &FileData{FileName: "deep.org", Heading: []*HeadingData{root}}
	f.Normalize()

	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if got := f.HeadingCount(); got != depth {
		t.Errorf("expected %d headings, got %d", depth, got)
	}

	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out FileData
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(f, &out) {
		t.Error("deep tree did not round trip")
	}

	// The innermost heading is the base case: no children, an empty sequence.
	n := out.Heading[0]
	for len(n.Heading) > 0 {
		n = n.Heading[0]
	}
	if n.Heading == nil || len(n.Heading) != 0 {
		t.Errorf("expected empty, non-nil children at the base case, got %#v", n.Heading)
	}
}

func TestNormalize_FillsEmptySequences(t *testing.T) {
	f := &FileData{
		FileName:     "x.org",
		FileMetaData: &FileMetaData{},
		Heading:      []*HeadingData{{Title: "a", Level: 1}},
	}
	f.Normalize()
	if f.FileTags == nil || f.Links == nil || f.FileMetaData.FileTags == nil {
		t.Error("expected top-level sequences to be non-nil")
	}
	if f.Heading[0].Heading == nil || f.Heading[0].Links == nil {
		t.Error("expected heading sequences to be non-nil")
	}
}

func TestEachLink_OrderAndBreadcrumb(t *testing.T) {
	f := sampleFile()
	type visit struct {
		crumb string
		name  string
	}
	var got []visit
	f.EachLink(func(bc []string, l LinkData) {
		got = append(got, visit{strings.Join(bc, " > "), l.Name})
	})
	want := []visit{
		{"", "Inbox"},
		{"Books", "SICP"},
		{"Books > Fiction", "Dune"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if f.LinkCount() != 3 {
		t.Errorf("expected 3 links, got %d", f.LinkCount())
	}
}

func TestFileData_NilHeadings(t *testing.T) {
	input := `{"file_name":"a.md","heading":[null,{"title":"A","level":1,"heading":[null],"links":[{"name":"x","link":"https://x.example"}]}]}`
	var f FileData
	if err := json.Unmarshal([]byte(input), &f); err != nil {
		t.Fatal(err)
	}

	f.Normalize()
	if f.Heading[1].Heading == nil || len(f.Heading[1].Heading) != 1 {
		t.Errorf("nil child should be kept, got %v", f.Heading[1].Heading)
	}

	var crumbs []string
	f.EachLink(func(bc []string, l LinkData) {
		crumbs = append(crumbs, strings.Join(bc, "/")+":"+l.Name)
	})
	if !reflect.DeepEqual(crumbs, []string{"A:x"}) {
		t.Errorf("got %v", crumbs)
	}
	if n := f.LinkCount(); n != 1 {
		t.Errorf("LinkCount = %d, want 1", n)
	}
	if n := f.HeadingCount(); n != 1 {
		t.Errorf("HeadingCount = %d, want 1", n)
	}
	if n := len(Outlines(&f)); n != 1 {
		t.Errorf("expected 1 outline, got %d", n)
	}
	if err := f.Validate(); err == nil || !strings.Contains(err.Error(), "nil heading") {
		t.Errorf("expected nil heading error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *FileData)
		wantErr string
	}{
		{"valid", func(f *FileData) {}, ""},
		{"empty name", func(f *FileData) { f.FileName = " " }, "file_name is empty"},
		{"level zero", func(f *FileData) { f.Heading[0].Level = 0 }, "level 0 is below 1"},
		{"child not deeper", func(f *FileData) { f.Heading[0].Heading[0].Level = 1 }, "not deeper than parent"},
		{"negative read_till", func(f *FileData) { f.Heading[0].Links[0].ReadTill = -1 }, "negative read_till"},
		{"negative line", func(f *FileData) { f.Links[0].LineNumber = -4 }, "negative line_number"},
		{"empty target", func(f *FileData) { f.Heading[0].Heading[0].Links[0].Link = "" }, "link target is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sampleFile()
			tt.mutate(f)
			err := f.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
