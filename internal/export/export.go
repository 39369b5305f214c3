// Package export writes the indexed library as JSON Lines to a local file or
// an S3-compatible bucket.
package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/linkorg/internal/linkdata"
	"github.com/dgallion1/linkorg/internal/store"
)

// Sink stores one exported document under key.
type Sink interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Index is the part of the store an export reads.
type Index interface {
	ListFiles(ctx context.Context) ([]store.FileSummary, error)
	GetFile(ctx context.Context, path string) (*linkdata.FileData, error)
}

// WriteJSONL writes one FileData per line.
func WriteJSONL(w io.Writer, files []*linkdata.FileData) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, f := range files {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode %s: %w", f.FileName, err)
		}
	}
	return bw.Flush()
}

// Collect loads every indexed file in path order.
func Collect(ctx context.Context, idx Index) ([]*linkdata.FileData, error) {
	summaries, err := idx.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	files := make([]*linkdata.FileData, 0, len(summaries))
	for _, s := range summaries {
		f, err := idx.GetFile(ctx, s.Path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Result describes a finished export.
type Result struct {
	Key   string
	Files int
	Bytes int
}

// Run collects the index and writes it to sink under key.
func Run(ctx context.Context, idx Index, sink Sink, key string) (Result, error) {
	files, err := Collect(ctx, idx)
	if err != nil {
		return Result{}, fmt.Errorf("collect: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, files); err != nil {
		return Result{}, err
	}
	if err := sink.Put(ctx, key, buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", key, err)
	}
	return Result{Key: key, Files: len(files), Bytes: buf.Len()}, nil
}
