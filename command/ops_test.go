package command

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-school-export/export"
)

type memoryStore struct {
	docs map[string]string
}

func (s *memoryStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if s.docs == nil {
		s.docs = map[string]string{}
	}
	s.docs[key] = string(data)
	return "/exports/" + key, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 10, 1, 2, 0, 0, 0, time.UTC)
}

func TestBuildBatchRequests_DefaultsFormat(t *testing.T) {
	requests := BuildBatchRequests([]string{"programs", " ", "attendance"}, export.ExportRequest{
		Locale: "fa",
		Params: map[string]string{"from": "2024-09-01"},
	})
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	for _, req := range requests {
		if req.Request.Format != export.FormatPDF || req.Request.Locale != "fa" {
			t.Fatalf("unexpected request %+v", req.Request)
		}
		if req.Request.Params["from"] != "2024-09-01" {
			t.Fatalf("expected params to be copied")
		}
	}
	requests[0].Request.Params["from"] = "changed"
	if requests[1].Request.Params["from"] != "2024-09-01" {
		t.Fatalf("expected params to be copied per request")
	}
}

func TestBatchCommand_StoresDocuments(t *testing.T) {
	store := &memoryStore{}
	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return BuildBatchRequests([]string{"programs", "students"}, export.ExportRequest{Format: export.FormatXLSX}), nil
	}
	cmd := NewBatchCommand(&stubExporter{}, store, loader, WithBatchClock(fixedClock))

	var report BatchReport
	if err := cmd.Execute(context.Background(), RunBatch{Result: &report}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if report.Completed != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if store.docs["2024-10-01/programs.xlsx"] != "data" {
		t.Fatalf("unexpected stored documents %v", store.docs)
	}
}

func TestBatchCommand_ContinuesAfterFailure(t *testing.T) {
	exporter := &stubExporter{export: func(ctx context.Context, req export.ExportRequest) (export.ExportResult, error) {
		if req.Dataset == "broken" {
			return export.ExportResult{}, errors.New("boom")
		}
		return export.ExportResult{Filename: req.Dataset + ".pdf", Data: []byte("%PDF")}, nil
	}}
	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return BuildBatchRequests([]string{"broken", "programs"}, export.ExportRequest{}), nil
	}
	cmd := NewBatchCommand(exporter, &memoryStore{}, loader, WithBatchClock(fixedClock))

	report, err := cmd.run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Completed != 1 || report.Failed != 1 || len(report.Errors) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestBatchCommand_AllFailed(t *testing.T) {
	exporter := &stubExporter{export: func(ctx context.Context, req export.ExportRequest) (export.ExportResult, error) {
		return export.ExportResult{}, errors.New("boom")
	}}
	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return BuildBatchRequests([]string{"programs"}, export.ExportRequest{}), nil
	}
	_, err := NewBatchCommand(exporter, &memoryStore{}, loader).run(context.Background(), "")
	if err == nil {
		t.Fatalf("expected error when every export fails")
	}
}

func TestBatchCommand_RunHonorsLimits(t *testing.T) {
	exporter := &stubExporter{}
	loader := func(ctx context.Context) ([]BatchRequest, error) {
		return BuildBatchRequests([]string{"programs", "students", "sessions"}, export.ExportRequest{}), nil
	}
	var sleeps int
	cmd := NewBatchCommand(exporter, &memoryStore{}, loader, WithBatchLimits(BatchLimits{MaxRequests: 2, MinInterval: time.Millisecond}))
	cmd.sleep = func(time.Duration) { sleeps++ }

	report, err := cmd.run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Completed != 2 || len(exporter.calls) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(exporter.calls))
	}
	if sleeps != 1 {
		t.Fatalf("expected 1 pause between exports, got %d", sleeps)
	}
}

func TestBatchCommand_LoadsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	content := `[{"request":{"dataset":"advisors","format":"csv"},"key":"weekly/advisors.csv"}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := &memoryStore{}
	report, err := NewBatchCommand(&stubExporter{}, store, nil).run(context.Background(), path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Completed != 1 || report.Paths[0] != "/exports/weekly/advisors.csv" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestBatchCommand_MissingLoader(t *testing.T) {
	_, err := NewBatchCommand(&stubExporter{}, &memoryStore{}, nil).run(context.Background(), "")
	if err == nil {
		t.Fatalf("expected loader error")
	}
}
