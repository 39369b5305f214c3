package linkdata

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a parsed file and returns all
// violations joined into one error, or nil.
func (f *FileData) Validate() error {
	if f == nil {
		return errors.New("nil file")
	}
	var errs []error
	if strings.TrimSpace(f.FileName) == "" {
		errs = append(errs, errors.New("file_name is empty"))
	}
	for i, l := range f.Links {
		errs = append(errs, validateLink(l, fmt.Sprintf("links[%d]", i))...)
	}
	for i, h := range f.Heading {
		errs = append(errs, validateHeading(h, 0, fmt.Sprintf("heading[%d]", i))...)
	}
	return errors.Join(errs...)
}

func validateHeading(h *HeadingData, parentLevel int, where string) []error {
	if h == nil {
		return []error{fmt.Errorf("%s: nil heading", where)}
	}
	var errs []error
	if h.Level < 1 {
		errs = append(errs, fmt.Errorf("%s: level %d is below 1", where, h.Level))
	} else if h.Level <= parentLevel {
		errs = append(errs, fmt.Errorf("%s: level %d not deeper than parent level %d", where, h.Level, parentLevel))
	}
	if h.LineNumber < 0 {
		errs = append(errs, fmt.Errorf("%s: negative line_number %d", where, h.LineNumber))
	}
	for i, l := range h.Links {
		errs = append(errs, validateLink(l, fmt.Sprintf("%s.links[%d]", where, i))...)
	}
	for i, c := range h.Heading {
		errs = append(errs, validateHeading(c, h.Level, fmt.Sprintf("%s.heading[%d]", where, i))...)
	}
	return errs
}

func validateLink(l LinkData, where string) []error {
	var errs []error
	if strings.TrimSpace(l.Link) == "" {
		errs = append(errs, fmt.Errorf("%s: link target is empty", where))
	}
	if l.ReadTill < 0 {
		errs = append(errs, fmt.Errorf("%s: negative read_till %d", where, l.ReadTill))
	}
	if l.LineNumber < 0 {
		errs = append(errs, fmt.Errorf("%s: negative line_number %d", where, l.LineNumber))
	}
	return errs
}
