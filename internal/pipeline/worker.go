package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/linkorg/internal/library"
	"github.com/dgallion1/linkorg/internal/linkdata"
	"github.com/dgallion1/linkorg/internal/store"
)

// Source lists and parses note files.
type Source interface {
	Discover() ([]string, error)
	Load(rel string) (*library.Entry, error)
}

// Index persists parsed files.
type Index interface {
	FileHash(ctx context.Context, path string) (string, error)
	SaveFile(ctx context.Context, path, hash string, f *linkdata.FileData) error
	DeleteMissing(ctx context.Context, keep []string) ([]string, error)
}

// Worker processes a single scan job.
type Worker struct {
	src   Source
	index Index
	log   *slog.Logger

	maxConcurrentParse int
}

func NewWorker(src Source, index Index, log *slog.Logger, maxParse int) *Worker {
	if maxParse <= 0 {
		maxParse = 1
	}
	return &Worker{
		src:                src,
		index:              index,
		log:                log,
		maxConcurrentParse: maxParse,
	}
}

// Process runs the full scan pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "trigger", job.Trigger, "force", job.Force)

	// Phase 1: Discover
	job.SetStatus(StatusDiscovering, "discovering")
	paths, err := w.src.Discover()
	if err != nil {
		log.Error("discover failed", "error", err)
		job.AddError(fmt.Sprintf("discover: %s", err))
		job.SetStatus(StatusFailed, "discovering")
		return
	}
	job.SetFound(len(paths))
	log.Info("discovered files", "files", len(paths))

	// Phase 2: Parse with bounded concurrency.
	job.SetStatus(StatusParsing, "parsing")
	type parseResult struct {
		entry *library.Entry
		err   error
		idx   int
	}
	results := make(chan parseResult, len(paths))
	sem := make(chan struct{}, w.maxConcurrentParse)

	for i, p := range paths {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			job.AddError(ctx.Err().Error())
			job.SetStatus(StatusFailed, "parsing")
			return
		}
		go func(i int, p string) {
			defer func() { <-sem }()
			e, err := w.src.Load(p)
			results <- parseResult{entry: e, err: err, idx: i}
		}(i, p)
	}

	// Collect parse results in discovery order.
	entries := make([]*library.Entry, len(paths))
	hadErrors := false
	for range paths {
		r := <-results
		if r.err != nil {
			log.Error("parse failed", "path", paths[r.idx], "error", r.err)
			job.AddError(fmt.Sprintf("%s: %s", paths[r.idx], r.err))
			hadErrors = true
			continue
		}
		entries[r.idx] = r.entry
		job.IncrParsed()
	}

	// Phase 3: Index changed files and prune the ones that disappeared.
	job.SetStatus(StatusIndexing, "indexing")
	stored := 0
	for _, e := range entries {
		if e == nil {
			continue
		}
		if ctx.Err() != nil {
			job.AddError(ctx.Err().Error())
			job.SetStatus(StatusFailed, "indexing")
			return
		}
		if !job.Force {
			hash, err := w.index.FileHash(ctx, e.Path)
			if err == nil && hash == e.Hash {
				job.IncrUnchanged()
				stored++
				continue
			}
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				log.Warn("hash lookup failed, reindexing", "path", e.Path, "error", err)
			}
		}
		err := withRetry(ctx, func() error {
			return w.index.SaveFile(ctx, e.Path, e.Hash, e.File)
		})
		if err != nil {
			log.Error("index failed", "path", e.Path, "error", err)
			job.AddError(fmt.Sprintf("index %s: %s", e.Path, err))
			hadErrors = true
			continue
		}
		stored++
		job.AddIndexed(e.File.LinkCount())
	}

	// Files that failed to parse keep their previous index rows.
	removed, err := w.index.DeleteMissing(ctx, paths)
	if err != nil {
		log.Error("prune failed", "error", err)
		job.AddError(fmt.Sprintf("prune: %s", err))
		hadErrors = true
	} else {
		job.SetRemoved(len(removed))
		if len(removed) > 0 {
			log.Info("pruned removed files", "files", removed)
		}
	}

	snap := job.Snapshot()
	log.Info("scan complete",
		"indexed", snap.Progress.FilesIndexed,
		"unchanged", snap.Progress.FilesUnchanged,
		"removed", snap.Progress.FilesRemoved,
		"links", snap.Progress.LinksIndexed,
		"errors", len(snap.Progress.Errors))

	if hadErrors && stored > 0 {
		job.SetStatus(StatusPartial, "done")
	} else if hadErrors {
		job.SetStatus(StatusFailed, "indexing")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}
