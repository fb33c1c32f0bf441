package export

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryTracker stores export audit records in memory (test/dev only).
type MemoryTracker struct {
	mu      sync.RWMutex
	records map[string]ExportRecord
	counter uint64
	Now     func() time.Time
}

// NewMemoryTracker creates an in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{records: make(map[string]ExportRecord), Now: time.Now}
}

// Start creates a new record.
func (t *MemoryTracker) Start(ctx context.Context, record ExportRecord) (string, error) {
	_ = ctx
	if record.ID == "" {
		record.ID = t.nextID()
	}
	if record.State == "" {
		record.State = StateRunning
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = t.now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.records[record.ID]; exists {
		return "", NewError(KindValidation, fmt.Sprintf("export %q already tracked", record.ID), nil)
	}
	t.records[record.ID] = record
	return record.ID, nil
}

// Complete marks a record completed with its output stats.
func (t *MemoryTracker) Complete(ctx context.Context, id string, stats RenderStats) error {
	_ = ctx
	return t.update(id, func(record *ExportRecord) {
		record.State = StateCompleted
		record.Rows = stats.Rows
		record.Bytes = stats.Bytes
		record.Pages = stats.Pages
		record.CompletedAt = t.now()
	})
}

// Fail marks a record failed.
func (t *MemoryTracker) Fail(ctx context.Context, id string, err error) error {
	_ = ctx
	return t.update(id, func(record *ExportRecord) {
		record.State = StateFailed
		if err != nil {
			record.Error = err.Error()
		}
		record.CompletedAt = t.now()
	})
}

// Status returns one record.
func (t *MemoryTracker) Status(ctx context.Context, id string) (ExportRecord, error) {
	_ = ctx
	t.mu.RLock()
	defer t.mu.RUnlock()
	record, ok := t.records[id]
	if !ok {
		return ExportRecord{}, NewError(KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	return record, nil
}

// List returns records matching the filter, newest first.
func (t *MemoryTracker) List(ctx context.Context, filter ProgressFilter) ([]ExportRecord, error) {
	_ = ctx
	t.mu.RLock()
	records := make([]ExportRecord, 0, len(t.records))
	for _, record := range t.records {
		if filter.Dataset != "" && record.Dataset != filter.Dataset {
			continue
		}
		if filter.State != "" && record.State != filter.State {
			continue
		}
		if !filter.Since.IsZero() && record.CreatedAt.Before(filter.Since) {
			continue
		}
		records = append(records, record)
	}
	t.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

func (t *MemoryTracker) update(id string, fn func(*ExportRecord)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	record, ok := t.records[id]
	if !ok {
		return NewError(KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	fn(&record)
	t.records[id] = record
	return nil
}

func (t *MemoryTracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *MemoryTracker) nextID() string {
	id := atomic.AddUint64(&t.counter, 1)
	return fmt.Sprintf("exp-%d", id)
}
