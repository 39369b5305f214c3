package linkdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidOutline is returned when a value is neither a HeadingOutline
// nor a LinkList.
var ErrInvalidOutline = errors.New("invalid outline")

// Outline is the compact, singly recursive form of a file: either a heading
// wrapping exactly one nested outline, or a flat list of links.
// The only implementations are HeadingOutline and LinkList.
type Outline interface {
	isOutline()
}

// HeadingOutline is a heading wrapping one nested outline.
type HeadingOutline struct {
	Heading        string  `json:"heading"`
	HeadingOrLinks Outline `json:"HeadingOrLinks"`
}

// LinkList is the leaf variant of Outline.
type LinkList []LinkData

func (HeadingOutline) isOutline() {}
func (LinkList) isOutline()       {}

func (h HeadingOutline) MarshalJSON() ([]byte, error) {
	if h.HeadingOrLinks == nil {
		return nil, fmt.Errorf("%w: heading %q has no nested outline", ErrInvalidOutline, h.Heading)
	}
	type wire HeadingOutline
	return json.Marshal(wire(h))
}

func (h *HeadingOutline) UnmarshalJSON(data []byte) error {
	fields, err := strictObject(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutline, err)
	}
	rawHeading, ok := fields["heading"]
	if !ok {
		return fmt.Errorf("%w: missing heading", ErrInvalidOutline)
	}
	rawNested, ok := fields["HeadingOrLinks"]
	if !ok {
		return fmt.Errorf("%w: missing HeadingOrLinks", ErrInvalidOutline)
	}
	if len(fields) != 2 {
		return fmt.Errorf("%w: heading outline has unknown keys", ErrInvalidOutline)
	}
	var heading *string
	if err := json.Unmarshal(rawHeading, &heading); err != nil || heading == nil {
		return fmt.Errorf("%w: heading must be a string", ErrInvalidOutline)
	}
	nested, err := DecodeOutline(rawNested)
	if err != nil {
		return err
	}
	h.Heading = *heading
	h.HeadingOrLinks = nested
	return nil
}

func (l LinkList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]LinkData(l))
}

func (l *LinkList) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil || elems == nil {
		return fmt.Errorf("%w: expected an array of links", ErrInvalidOutline)
	}
	out := make(LinkList, 0, len(elems))
	for i, e := range elems {
		link, err := decodeLink(e)
		if err != nil {
			return fmt.Errorf("%w: link %d: %v", ErrInvalidOutline, i, err)
		}
		out = append(out, link)
	}
	*l = out
	return nil
}

var linkKeys = map[string]bool{
	"name":        true,
	"link":        true,
	"description": true,
	"likeability": true,
	"read_till":   true,
	"line_number": true,
}

// decodeLink reads one LinkData, matching keys exactly.
func decodeLink(data []byte) (LinkData, error) {
	var link LinkData
	fields, err := strictObject(data)
	if err != nil {
		return link, err
	}
	for k := range fields {
		if !linkKeys[k] {
			return link, fmt.Errorf("unknown key %q", k)
		}
	}
	for _, k := range []string{"name", "link"} {
		if _, ok := fields[k]; !ok {
			return link, fmt.Errorf("missing %s", k)
		}
	}
	if err := json.Unmarshal(data, &link); err != nil {
		return link, err
	}
	if errs := validateLink(link, "link"); len(errs) > 0 {
		return link, errors.Join(errs...)
	}
	return link, nil
}

// strictObject splits a single JSON object into its members. Keys are
// case-sensitive, duplicates are rejected and nothing may follow the object.
func strictObject(data []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected an object")
	}
	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected an object key")
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		fields[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after object")
	}
	return fields, nil
}

// DecodeOutline decodes either variant, rejecting any other JSON value.
func DecodeOutline(data []byte) (Outline, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidOutline)
	}
	switch data[0] {
	case '[':
		var l LinkList
		if err := l.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return l, nil
	case '{':
		var h HeadingOutline
		if err := h.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrInvalidOutline)
	}
}

// Outlines flattens the heading tree into one outline per group of links,
// in document order. Root links come first as a bare LinkList; every heading
// with links yields a HeadingOutline chain from its top-level ancestor.
func Outlines(f *FileData) []Outline {
	var out []Outline
	if len(f.Links) > 0 {
		out = append(out, LinkList(cloneLinks(f.Links)))
	}
	var walk func(h *HeadingData, path []string)
	walk = func(h *HeadingData, path []string) {
		if h == nil {
			return
		}
		path = append(path, h.Title)
		if len(h.Links) > 0 {
			var o Outline = LinkList(cloneLinks(h.Links))
			for i := len(path) - 1; i >= 0; i-- {
				o = HeadingOutline{Heading: path[i], HeadingOrLinks: o}
			}
			out = append(out, o)
		}
		for _, c := range h.Heading {
			walk(c, path)
		}
	}
	for _, h := range f.Heading {
		walk(h, nil)
	}
	return out
}

// Depth returns the number of headings wrapping the leaf link list.
func Depth(o Outline) int {
	d := 0
	for {
		h, ok := o.(HeadingOutline)
		if !ok {
			return d
		}
		d++
		o = h.HeadingOrLinks
	}
}

// OutlineLinks returns the leaf links of an outline.
func OutlineLinks(o Outline) []LinkData {
	for {
		switch v := o.(type) {
		case HeadingOutline:
			o = v.HeadingOrLinks
		case LinkList:
			return v
		default:
			return nil
		}
	}
}

func cloneLinks(links []LinkData) []LinkData {
	out := make([]LinkData, len(links))
	copy(out, links)
	return out
}
