package api

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/dgallion1/linkorg/internal/library"
	"github.com/dgallion1/linkorg/internal/linkdata"
	"github.com/dgallion1/linkorg/internal/store"
	"github.com/go-chi/chi/v5"
)

// handleListFiles lists every indexed file.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.index.ListFiles(r.Context())
	if err != nil {
		s.log.Error("list files", "error", err)
		jsonError(w, "failed to list files", http.StatusInternalServerError)
		return
	}
	if files == nil {
		files = []store.FileSummary{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"files": files})
}

// handleGetFile returns the full heading tree of one file.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	f, ok := s.fileFromRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f)
}

// handleOutline returns a file flattened into heading -> links outlines.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	f, ok := s.fileFromRequest(w, r)
	if !ok {
		return
	}
	outlines := linkdata.Outlines(f)
	if outlines == nil {
		outlines = []linkdata.Outline{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"path":     chi.URLParam(r, "*"),
		"outlines": outlines,
	})
}

// fileFromRequest resolves the wildcard path against the index, falling back
// to parsing the file directly when it has not been scanned yet. It writes the
// error response itself and reports whether the caller should continue.
func (s *Server) fileFromRequest(w http.ResponseWriter, r *http.Request) (*linkdata.FileData, bool) {
	path := strings.Trim(chi.URLParam(r, "*"), "/")
	if path == "" {
		jsonError(w, "file path is required", http.StatusBadRequest)
		return nil, false
	}
	f, err := s.lookupFile(r.Context(), path)
	switch {
	case err == nil:
		return f, true
	case errors.Is(err, store.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		jsonError(w, "file not found", http.StatusNotFound)
	case errors.Is(err, library.ErrInvalidPath), errors.Is(err, library.ErrUnsupported):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, library.ErrTooLarge):
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
	default:
		s.log.Error("load file", "path", path, "error", err)
		jsonError(w, "failed to load file", http.StatusInternalServerError)
	}
	return nil, false
}

func (s *Server) lookupFile(ctx context.Context, path string) (*linkdata.FileData, error) {
	f, err := s.index.GetFile(ctx, path)
	if err == nil || !errors.Is(err, store.ErrNotFound) || s.src == nil {
		return f, err
	}
	e, err := s.src.Load(path)
	if err != nil {
		return nil, err
	}
	return e.File, nil
}
