package reindex

import (
	"sync"
	"time"
)

// Status is the outcome of one file in a sweep.
type Status string

const (
	StatusUpdated  Status = "updated"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Entry is the per-file line of a sweep report.
type Entry struct {
	FileID     int64  `json:"file_id"`
	StorageURI string `json:"storage_uri"`
	Status     Status `json:"status"`
	Pages      int    `json:"pages"`
	Error      string `json:"error,omitempty"`
}

// Totals counts entries by status.
type Totals struct {
	Files    int `json:"files"`
	Updated  int `json:"updated"`
	NotFound int `json:"not_found"`
	Errors   int `json:"errors"`
}

// Report is the result of one sweep.
type Report struct {
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Entries    []Entry   `json:"entries"`
	Totals     Totals    `json:"totals"`

	// Updated maps storage_uri to the stored page count for every file the
	// sweep wrote, including unreadable files stored as 0.
	Updated map[string]int `json:"updated"`
	Count   int            `json:"count"`
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
	r.Totals.Files++
	switch e.Status {
	case StatusUpdated:
		r.Totals.Updated++
	case StatusNotFound:
		r.Totals.NotFound++
	case StatusError:
		r.Totals.Errors++
	}
}

func (r *Report) wrote(storageURI string, pages int) {
	r.Updated[storageURI] = pages
	r.Count = len(r.Updated)
}

// RunStore is a thread-safe in-memory report registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Report
	ttl  time.Duration
	now  func() time.Time
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{
		runs: make(map[string]*Report),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *RunStore) Put(r *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.RunID] = r
}

// Get returns the report for id, or nil.
func (s *RunStore) Get(id string) *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// Cleanup removes reports that finished more than ttl ago.
func (s *RunStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, r := range s.runs {
		if now.Sub(r.FinishedAt) > s.ttl {
			delete(s.runs, id)
			removed++
		}
	}
	return removed
}
