package linkdata

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestOutlines_FromFile(t *testing.T) {
	outlines := Outlines(sampleFile())
	if len(outlines) != 3 {
		t.Fatalf("expected 3 outlines, got %d", len(outlines))
	}

	root, ok := outlines[0].(LinkList)
	if !ok || len(root) != 1 || root[0].Name != "Inbox" {
		t.Errorf("expected root link list first, got %#v", outlines[0])
	}

	books, ok := outlines[1].(HeadingOutline)
	if !ok || books.Heading != "Books" {
		t.Fatalf("expected Books heading outline, got %#v", outlines[1])
	}
	if Depth(books) != 1 {
		t.Errorf("expected depth 1, got %d", Depth(books))
	}

	fiction := outlines[2]
	if Depth(fiction) != 2 {
		t.Errorf("expected depth 2, got %d", Depth(fiction))
	}
	links := OutlineLinks(fiction)
	if len(links) != 1 || links[0].Name != "Dune" {
		t.Errorf("expected Dune leaf, got %v", links)
	}
}

func TestOutline_RoundTrip(t *testing.T) {
	in := HeadingOutline{
		Heading: "Books",
		HeadingOrLinks: HeadingOutline{
			Heading:        "Fiction",
			HeadingOrLinks: LinkList{{Name: "a", Link: "http://x", ReadTill: 3, LineNumber: 10}},
		},
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, err := DecodeOutline(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(Outline(in), out) {
		t.Errorf("round trip mismatch: %s", b)
	}
}

func TestOutline_EmptyLinkList(t *testing.T) {
	b, err := json.Marshal(LinkList(nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[]" {
		t.Errorf("expected [], got %s", b)
	}
	out, err := DecodeOutline(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if l, ok := out.(LinkList); !ok || len(l) != 0 {
		t.Errorf("expected empty link list, got %#v", out)
	}
}

func TestDecodeOutline_Rejects(t *testing.T) {
	inputs := []string{
		``,
		`null`,
		`"text"`,
		`42`,
		`true`,
		`{}`,
		`{"heading":"a"}`,
		`{"heading":"a","HeadingOrLinks":null}`,
		`{"heading":"a","HeadingOrLinks":"b"}`,
		`{"HeadingOrLinks":[]}`,
		`{"heading":"a","HeadingOrLinks":[],"extra":1}`,
		`[1,2]`,
		`[{"name":"a"}]`,
		`[{"name":"a","link":"b","bogus":true}]`,
		`{"heading":"a","HeadingOrLinks":{"heading":"b","HeadingOrLinks":[{"x":1}]}}`,
		`{"heading":"a","HeadingOrLinks":[]}garbage`,
		`{"heading":"a","HeadingOrLinks":[]} {}`,
		`{"HEADING":"a","headingorlinks":[]}`,
		`{"heading":"a","heading":"b","HeadingOrLinks":[]}`,
		`{"heading":null,"HeadingOrLinks":[]}`,
		`{"heading":1,"HeadingOrLinks":[]}`,
		`[{"name":"n","link":"l","read_till":-4}]`,
		`[{"name":"n","link":"l","line_number":-1}]`,
		`[{"link":"l"}]`,
		`[{"NAME":"n","link":"l"}]`,
		`[{"name":"n","link":"l","link":"m"}]`,
		`[{"name":"n","link":"  "}]`,
	}
	for _, in := range inputs {
		_, err := DecodeOutline([]byte(in))
		if err == nil {
			t.Errorf("expected %q to be rejected", in)
			continue
		}
		if !errors.Is(err, ErrInvalidOutline) {
			t.Errorf("expected ErrInvalidOutline for %q, got %v", in, err)
		}
	}
}

func TestHeadingOutline_MarshalNilNested(t *testing.T) {
	_, err := json.Marshal(HeadingOutline{Heading: "a"})
	if err == nil {
		t.Fatal("expected marshal error for nil nested outline")
	}
}

func TestOutline_UnmarshalField(t *testing.T) {
	var h HeadingOutline
	err := json.Unmarshal([]byte(`{"heading":"top","HeadingOrLinks":[{"name":"n","link":"l","read_till":2,"line_number":5}]}`), &h)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if h.Heading != "top" {
		t.Errorf("expected heading %q, got %q", "top", h.Heading)
	}
	links := OutlineLinks(h)
	if len(links) != 1 || links[0].ReadTill != 2 || links[0].LineNumber != 5 {
		t.Errorf("unexpected links %+v", links)
	}
}
