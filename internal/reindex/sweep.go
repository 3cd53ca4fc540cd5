// Package reindex recomputes the stored page counts of catalogued files
// from their locally stored PDFs.
package reindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/dofcatalog/internal/pagecount"
	"github.com/dgallion1/dofcatalog/internal/resolve"
	"github.com/dgallion1/dofcatalog/internal/store"
)

// ErrSweepRunning is returned when a sweep is requested while another one
// is still in progress.
var ErrSweepRunning = errors.New("reindex: sweep already running")

// Catalog is the part of the store a sweep reads and writes.
type Catalog interface {
	SweepInput(ctx context.Context) ([]store.SweepFile, error)
	UpdatePagesCount(ctx context.Context, id int64, pages int) error
}

// PageCounter counts the pages of one locally stored document.
type PageCounter interface {
	CountPages(ctx context.Context, loc resolve.Locator) (int, error)
}

// Sweeper walks every catalogued file and refreshes its page count.
// Sweeps never overlap; the files of one sweep are handled sequentially.
type Sweeper struct {
	catalog Catalog
	counter PageCounter
	runs    *RunStore
	log     *slog.Logger

	running sync.Mutex
}

func NewSweeper(catalog Catalog, counter PageCounter, runs *RunStore, log *slog.Logger) *Sweeper {
	return &Sweeper{catalog: catalog, counter: counter, runs: runs, log: log}
}

// Runs exposes the report registry.
func (s *Sweeper) Runs() *RunStore {
	return s.runs
}

// Run performs one sweep and records its report. trigger is a free-form
// label ("manual", "schedule") copied into the report.
//
// Per file: a document that cannot be resolved locally is reported
// not_found and its count is left as is; an unreadable PDF stores 0 and is
// reported error; anything else stores the count and is reported updated.
// A failed write marks that entry error and the sweep moves on.
func (s *Sweeper) Run(ctx context.Context, trigger string) (*Report, error) {
	if !s.running.TryLock() {
		return nil, ErrSweepRunning
	}
	defer s.running.Unlock()

	files, err := s.catalog.SweepInput(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	report := &Report{
		RunID:     NewRunID(),
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
		Entries:   make([]Entry, 0, len(files)),
		Updated:   make(map[string]int),
	}
	log := s.log.With("run_id", report.RunID, "trigger", trigger)
	log.Info("reindex started", "files", len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()
			s.runs.Put(report)
			return report, err
		}
		report.add(s.sweepOne(ctx, log, report, f))
	}

	report.FinishedAt = time.Now().UTC()
	s.runs.Put(report)
	log.Info("reindex finished",
		"updated", report.Totals.Updated,
		"not_found", report.Totals.NotFound,
		"errors", report.Totals.Errors,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report, nil
}

func (s *Sweeper) sweepOne(ctx context.Context, log *slog.Logger, report *Report, f store.SweepFile) Entry {
	e := Entry{FileID: f.ID, StorageURI: f.StorageURI}

	n, err := s.counter.CountPages(ctx, resolve.Locator{StorageLocator: f.StorageURI})
	switch {
	case err == nil:
		e.Status, e.Pages = StatusUpdated, n
	case pagecount.IsParseError(err):
		e.Status, e.Error = StatusError, err.Error()
	case errors.Is(err, resolve.ErrNotFound):
		e.Status = StatusNotFound
		return e
	default:
		e.Status, e.Error = StatusError, err.Error()
		return e
	}

	if err := s.catalog.UpdatePagesCount(ctx, f.ID, e.Pages); err != nil {
		log.Warn("pages_count write failed", "file_id", f.ID, "error", err)
		e.Status, e.Error = StatusError, err.Error()
		return e
	}
	report.wrote(f.StorageURI, e.Pages)
	return e
}
