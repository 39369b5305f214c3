package linkdata

// FileData is the root of a parsed note file.
type FileData struct {
	FileName         string         `json:"file_name"`
	FileMetaData     *FileMetaData  `json:"file_meta_data,omitempty"`
	FileTitle        string         `json:"file_title"`
	FileDescription  string         `json:"file_description"`
	FileCreationDate string         `json:"file_creation_date"`
	FileTags         []string       `json:"file_tags"`
	Heading          []*HeadingData `json:"heading"`
	Links            []LinkItem     `json:"links"` // Links that appear before the first heading
}

// FileMetaData holds the descriptive keywords a file declared about itself.
// Each optional field is nil when the file did not set it.
type FileMetaData struct {
	FileTitle        *string  `json:"file_title,omitempty"`
	FileDescription  *string  `json:"file_description,omitempty"`
	FileCreationDate *string  `json:"file_creation_date,omitempty"`
	FileTags         []string `json:"file_tags"`
}

// HeadingData is a recursive section in the outline.
type HeadingData struct {
	Title      string         `json:"title"`
	Level      int            `json:"level"`       // 1 for top-level headings
	LineNumber int            `json:"line_number"` // 1-based source line, 0 if N/A
	Heading    []*HeadingItem `json:"heading"`
	Links      []LinkData     `json:"links"`
}

// HeadingItem is the name some revisions of the schema use for HeadingData.
type HeadingItem = HeadingData

// LinkData is a single reference with its reading progress.
type LinkData struct {
	Name        string  `json:"name"`
	Link        string  `json:"link"`
	Description *string `json:"description,omitempty"`
	Likeability *string `json:"likeability,omitempty"`
	ReadTill    int     `json:"read_till"`
	LineNumber  int     `json:"line_number"`
}

// LinkItem is the name some revisions of the schema use for LinkData.
type LinkItem = LinkData

// StringPtr returns a pointer to s, for filling optional fields.
func StringPtr(s string) *string {
	return &s
}

// Normalize replaces nil sequences with empty ones so that a leaf heading
// encodes as "heading": [] rather than null. Nil headings are left in place
// for Validate to report.
func (f *FileData) Normalize() {
	if f.FileTags == nil {
		f.FileTags = []string{}
	}
	if f.Links == nil {
		f.Links = []LinkItem{}
	}
	if f.Heading == nil {
		f.Heading = []*HeadingData{}
	}
	if f.FileMetaData != nil && f.FileMetaData.FileTags == nil {
		f.FileMetaData.FileTags = []string{}
	}
	for _, h := range f.Heading {
		if h != nil {
			h.normalize()
		}
	}
}

func (h *HeadingData) normalize() {
	if h.Heading == nil {
		h.Heading = []*HeadingItem{}
	}
	if h.Links == nil {
		h.Links = []LinkData{}
	}
	for _, c := range h.Heading {
		if c != nil {
			c.normalize()
		}
	}
}

// EachLink visits every link in document order. The breadcrumb holds the
// titles of the headings that lead to the link; it is empty for root links
// and must not be retained by fn.
func (f *FileData) EachLink(fn func(breadcrumb []string, link LinkData)) {
	for _, l := range f.Links {
		fn(nil, l)
	}
	var walk func(h *HeadingData, bc []string)
	walk = func(h *HeadingData, bc []string) {
		if h == nil {
			return
		}
		bc = append(bc, h.Title)
		for _, l := range h.Links {
			fn(bc, l)
		}
		for _, c := range h.Heading {
			walk(c, bc)
		}
	}
	for _, h := range f.Heading {
		walk(h, nil)
	}
}

// LinkCount returns the number of links in the whole file.
func (f *FileData) LinkCount() int {
	n := 0
	f.EachLink(func([]string, LinkData) { n++ })
	return n
}

// HeadingCount returns the number of headings at every depth.
func (f *FileData) HeadingCount() int {
	var count func(hs []*HeadingData) int
	count = func(hs []*HeadingData) int {
		n := 0
		for _, h := range hs {
			if h != nil {
				n += 1 + count(h.Heading)
			}
		}
		return n
	}
	return count(f.Heading)
}
