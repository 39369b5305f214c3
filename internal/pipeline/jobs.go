package pipeline

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a scan job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusDiscovering JobStatus = "discovering"
	StatusParsing     JobStatus = "parsing"
	StatusIndexing    JobStatus = "indexing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
)

// Done reports whether the status is final.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusPartial
}

// Job tracks the state of a single scan of the notes directory.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	Force   bool   `json:"force"`
	Trigger string `json:"trigger"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	errors []string
	done   chan struct{}
}

// Progress tracks processing progress.
type Progress struct {
	FilesFound     int      `json:"files_found"`
	FilesParsed    int      `json:"files_parsed"`
	FilesUnchanged int      `json:"files_unchanged"`
	FilesIndexed   int      `json:"files_indexed"`
	FilesRemoved   int      `json:"files_removed"`
	LinksIndexed   int      `json:"links_indexed"`
	Errors         []string `json:"errors"`
}

// NewJob creates a queued scan. Force re-indexes files whose content has not
// changed since the last scan.
func NewJob(force bool, trigger string) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		Force:     force,
		Trigger:   trigger,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		done:      make(chan struct{}),
	}
}

func newJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Recent returns snapshots of every tracked job, newest first.
func (s *JobStore) Recent() []JobSnapshot {
	s.mu.Lock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	out := make([]JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Snapshot())
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out
}

// Cleanup removes expired jobs that have finished.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if snap.Status.Done() && now.Sub(snap.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically. A final status releases Wait.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status.Done() {
		return
	}
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	if status.Done() && j.done != nil {
		close(j.done)
	}
}

// Wait blocks until the job reaches a final status or the channel closes.
func (j *Job) Wait(cancel <-chan struct{}) bool {
	j.mu.Lock()
	done := j.done
	j.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return true
	case <-cancel:
		return false
	}
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetFound records how many files discovery returned.
func (j *Job) SetFound(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FilesFound = n
	j.UpdatedAt = time.Now()
}

// IncrParsed atomically increments files parsed.
func (j *Job) IncrParsed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FilesParsed++
	j.UpdatedAt = time.Now()
}

// IncrUnchanged counts a file skipped because its content hash matched.
func (j *Job) IncrUnchanged() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FilesUnchanged++
	j.UpdatedAt = time.Now()
}

// AddIndexed records a saved file and its link count.
func (j *Job) AddIndexed(links int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FilesIndexed++
	j.Progress.LinksIndexed += links
	j.UpdatedAt = time.Now()
}

// SetRemoved records how many stale files were pruned from the index.
func (j *Job) SetRemoved(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FilesRemoved = n
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Force     bool      `json:"force"`
	Trigger   string    `json:"trigger"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Force:     j.Force,
		Trigger:   j.Trigger,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
