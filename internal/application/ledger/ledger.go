// Package ledger owns the in-memory list of attendance records and the
// views derived from it.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"classroll/internal/adapters/metrics"
	"classroll/internal/domain/attendance"
)

// Store is the persistence the ledger needs.
type Store interface {
	Load(ctx context.Context) ([]attendance.Record, bool, error)
	Save(ctx context.Context, records []attendance.Record) error
}

// Ledger holds attendance records in insertion order.
type Ledger struct {
	mu      sync.RWMutex
	records []attendance.Record
	store   Store
	newID   func() string
}

// New creates an empty Ledger backed by store. Call Load before use.
func New(store Store) *Ledger {
	return &Ledger{
		store: store,
		newID: func() string { return uuid.New().String() },
	}
}

// Load reads the persisted ledger, seeding demo records when nothing usable
// is stored. Records without an ID get one; a zero semester becomes 1.
// PRE: none
// POST: Every record has a unique ID
func (l *Ledger) Load(ctx context.Context) error {
	records, found, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	dirty := false
	if !found {
		records = attendance.SeedRecords()
		dirty = true
		slog.Info("ledger_event", "event", "seeded", "records", len(records))
	}

	seen := make(map[string]bool, len(records))
	for i := range records {
		r := &records[i]
		if r.ID == "" || seen[r.ID] {
			r.ID = l.newID()
			dirty = true
		}
		seen[r.ID] = true
		if r.Semester == 0 {
			r.Semester = 1
			dirty = true
		}
	}

	if dirty {
		if err := l.store.Save(ctx, records); err != nil {
			return fmt.Errorf("save ledger: %w", err)
		}
	}

	l.mu.Lock()
	l.records = records
	l.mu.Unlock()
	return nil
}

// List returns records whose name contains filter (ignoring case), newest first.
// PRE: none
// POST: Ties on (date, time) keep insertion order
func (l *Ledger) List(filter string) []attendance.Record {
	l.mu.RLock()
	out := attendance.Filter(l.records, filter)
	l.mu.RUnlock()

	attendance.SortNewestFirst(out)
	return out
}

// Get returns the record with the given ID.
// PRE: none
// POST: Returns attendance.ErrRecordNotFound if id is unknown
func (l *Ledger) Get(id string) (attendance.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.indexOf(id)
	if i == -1 {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return l.records[i], nil
}

// Append adds a check-in event to the ledger.
// PRE: rec has Name, Date, Time and Status set
// POST: rec is persisted with an ID
func (l *Ledger) Append(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if rec.Semester == 0 {
		rec.Semester = 1
	}
	if err := rec.Validate(); err != nil {
		return attendance.Record{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.ID == "" || l.indexOf(rec.ID) != -1 {
		rec.ID = l.newID()
	}

	next := make([]attendance.Record, len(l.records), len(l.records)+1)
	copy(next, l.records)
	next = append(next, rec)

	if err := l.commit(ctx, next); err != nil {
		return attendance.Record{}, err
	}
	metrics.Mutations.WithLabelValues("ledger", "append").Inc()
	slog.Info("ledger_event", "event", "record_added", "id", rec.ID, "name", rec.Name, "status", rec.Status)
	return rec, nil
}

// Edit replaces the subject, semester and status of a record.
// PRE: id identifies an existing record
// POST: Name, Role, Date and Time are unchanged
func (l *Ledger) Edit(ctx context.Context, id string, e attendance.Edit) (attendance.Record, error) {
	e, err := e.Normalize()
	if err != nil {
		return attendance.Record{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i == -1 {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}

	next := append([]attendance.Record(nil), l.records...)
	next[i].Apply(e)

	if err := l.commit(ctx, next); err != nil {
		return attendance.Record{}, err
	}
	metrics.Mutations.WithLabelValues("ledger", "edit").Inc()
	slog.Info("ledger_event", "event", "record_edited", "id", id, "status", e.Status)
	return next[i], nil
}

// Stats returns dashboard counters as of the given date (YYYY-MM-DD).
func (l *Ledger) Stats(asOfDate string) attendance.Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return attendance.ComputeStats(l.records, asOfDate)
}

// StudentSummary returns the per-subject absence breakdown for fullName.
func (l *Ledger) StudentSummary(fullName string) []attendance.SubjectSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return attendance.Summarize(l.records, fullName)
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.records {
		if l.records[i].ID == id {
			return i
		}
	}
	return -1
}

// commit persists next and publishes it. Caller holds l.mu.
func (l *Ledger) commit(ctx context.Context, next []attendance.Record) error {
	if err := l.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	l.records = next
	return nil
}
