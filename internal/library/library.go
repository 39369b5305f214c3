package library

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dgallion1/linkorg/internal/linkdata"
	"github.com/dgallion1/linkorg/internal/parser"
)

var (
	ErrTooLarge    = errors.New("file exceeds size limit")
	ErrUnsupported = errors.New("unsupported file type")
	ErrInvalidPath = errors.New("path is outside the notes directory")
)

const (
	defaultMaxFileBytes = 10 << 20
	defaultCacheSize    = 1024
)

// Options tunes a Library. Zero values pick defaults.
type Options struct {
	MaxFileBytes         int64
	CacheSize            int
	PDFFallbackPdftotext bool
}

// Entry is one parsed note file. Entries are shared through the cache and
// must not be modified.
type Entry struct {
	Path    string
	Hash    string
	Size    int64
	ModTime time.Time
	File    *linkdata.FileData
}

// Library loads note files below a root directory.
type Library struct {
	root        string
	maxBytes    int64
	pdfFallback bool
	cache       *lru.Cache[string, *Entry]
}

func New(root string, opts Options) (*Library, error) {
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = defaultMaxFileBytes
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, *Entry](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}
	return &Library{
		root:        root,
		maxBytes:    opts.MaxFileBytes,
		pdfFallback: opts.PDFFallbackPdftotext,
		cache:       cache,
	}, nil
}

// Root returns the notes directory.
func (l *Library) Root() string { return l.root }

// Discover lists the supported files below the root.
func (l *Library) Discover() ([]string, error) {
	return Discover(l.root)
}

// Load returns the parsed file at rel, a slash-separated path relative to the
// root. A cached entry is reused while the file's size and mtime are
// unchanged.
func (l *Library) Load(rel string) (*Entry, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return nil, fmt.Errorf("%q: %w", rel, ErrInvalidPath)
	}
	if !parser.IsSupportedExtension(rel) {
		return nil, fmt.Errorf("%q: %w", rel, ErrUnsupported)
	}
	full := filepath.Join(l.root, local)

	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory: %w", rel, ErrUnsupported)
	}
	if info.Size() > l.maxBytes {
		return nil, fmt.Errorf("%q is %d bytes: %w", rel, info.Size(), ErrTooLarge)
	}
	if e, ok := l.cache.Get(rel); ok && e.Size == info.Size() && e.ModTime.Equal(info.ModTime()) {
		return e, nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	e, err := l.parse(rel, data)
	if err != nil {
		return nil, err
	}
	e.Size = info.Size()
	e.ModTime = info.ModTime()
	l.cache.Add(rel, e)
	return e, nil
}

func (l *Library) parse(rel string, data []byte) (*Entry, error) {
	p, err := parser.ForFile(rel)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", rel, ErrUnsupported)
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = l.pdfFallback
	}
	f, err := p.Parse(bytes.NewReader(data), rel)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rel, err)
	}
	return &Entry{Path: rel, Hash: ContentHash(data), File: f}, nil
}

// Forget drops a cached entry.
func (l *Library) Forget(rel string) {
	l.cache.Remove(rel)
}

// Cached reports how many parsed files are held in memory.
func (l *Library) Cached() int {
	return l.cache.Len()
}

// ContentHash computes SHA-256 of content and returns hex string.
func ContentHash(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
