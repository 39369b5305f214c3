package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgallion1/linkorg/internal/store"
)

// handleSearchLinks filters indexed links by text, tag, likeability and
// reading progress.
func (s *Server) handleSearchLinks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := store.LinkQuery{
		Text:        q.Get("q"),
		Tag:         q.Get("tag"),
		Likeability: q.Get("likeability"),
		Path:        q.Get("path"),
	}
	if v := q.Get("unread"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, "unread must be a boolean", http.StatusBadRequest)
			return
		}
		query.Unread = unread
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		query.Limit = n
	}

	links, err := s.index.SearchLinks(r.Context(), query)
	if err != nil {
		s.log.Error("search links", "error", err)
		jsonError(w, "failed to search links", http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []store.LinkRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"links": links,
		"count": len(links),
	})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.index.Tags(r.Context())
	if err != nil {
		s.log.Error("list tags", "error", err)
		jsonError(w, "failed to list tags", http.StatusInternalServerError)
		return
	}
	if tags == nil {
		tags = []store.TagCount{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"tags": tags})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.index.Stats(r.Context())
	if err != nil {
		s.log.Error("index stats", "error", err)
		jsonError(w, "stats unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"index":       stats,
		"queue_depth": s.scanner.QueueDepth(),
	})
}
