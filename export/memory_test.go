package export

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryTracker_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	tracker := NewMemoryTracker()
	tracker.Now = func() time.Time { return now }

	id, err := tracker.Start(ctx, ExportRecord{Dataset: "programs", Format: FormatPDF})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}
	if err := tracker.Complete(ctx, id, RenderStats{Rows: 3, Bytes: 120}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	record, err := tracker.Status(ctx, id)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if record.State != StateCompleted || record.Rows != 3 || record.Bytes != 120 {
		t.Fatalf("unexpected record %+v", record)
	}
	if !record.CompletedAt.Equal(now) {
		t.Fatalf("expected completed at %v, got %v", now, record.CompletedAt)
	}
}

func TestMemoryTracker_DuplicateStart(t *testing.T) {
	tracker := NewMemoryTracker()
	if _, err := tracker.Start(context.Background(), ExportRecord{ID: "a"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := tracker.Start(context.Background(), ExportRecord{ID: "a"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestMemoryTracker_FailUnknown(t *testing.T) {
	tracker := NewMemoryTracker()
	err := tracker.Fail(context.Background(), "missing", errors.New("boom"))
	var exportErr *ExportError
	if !errors.As(err, &exportErr) || exportErr.Kind != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryTracker_ListOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	tracker := NewMemoryTracker()

	for i, id := range []string{"a", "b", "c"} {
		if _, err := tracker.Start(ctx, ExportRecord{
			ID:        id,
			Dataset:   "students",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("start %s: %v", id, err)
		}
	}
	if err := tracker.Fail(ctx, "b", errors.New("boom")); err != nil {
		t.Fatalf("fail: %v", err)
	}

	records, err := tracker.List(ctx, ProgressFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].ID != "c" || records[1].ID != "b" {
		t.Fatalf("unexpected order %+v", records)
	}

	failed, err := tracker.List(ctx, ProgressFilter{State: StateFailed})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(failed) != 1 || failed[0].Error != "boom" {
		t.Fatalf("unexpected failed records %+v", failed)
	}

	recent, err := tracker.List(ctx, ProgressFilter{Since: base.Add(90 * time.Second)})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "c" {
		t.Fatalf("unexpected recent records %+v", recent)
	}
}
