package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-school-export/export"
)

func newService(t *testing.T, tracker export.Tracker) export.Service {
	t.Helper()
	datasets := export.NewDatasetRegistry()
	err := datasets.Register("advisors", export.DatasetSourceFunc(func(ctx context.Context, req export.DatasetRequest) (export.Dataset, error) {
		return export.Dataset{
			Title:   "Advisors",
			Columns: []export.Column{{Header: "Name", Key: "name"}},
			Rows:    []export.Row{{"name": "Reza Karimi"}},
		}, nil
	}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return export.NewService(export.ServiceConfig{Datasets: datasets, Tracker: tracker})
}

func TestExportHistoryHandler_ListsTrackedRuns(t *testing.T) {
	svc := newService(t, export.NewMemoryTracker())
	for _, format := range []export.Format{export.FormatCSV, export.FormatXLSX} {
		if _, err := svc.Export(context.Background(), export.ExportRequest{Dataset: "advisors", Format: format}); err != nil {
			t.Fatalf("export %s: %v", format, err)
		}
	}

	records, err := NewExportHistoryHandler(svc).Query(context.Background(), ExportHistory{
		Filter: export.ProgressFilter{Dataset: "advisors", Limit: 1},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 || records[0].State != export.StateCompleted {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestExportHistoryHandler_NoTracker(t *testing.T) {
	_, err := NewExportHistoryHandler(newService(t, nil)).Query(context.Background(), ExportHistory{})
	if export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExportHistoryHandler_InvalidLimit(t *testing.T) {
	_, err := NewExportHistoryHandler(newService(t, nil)).Query(context.Background(), ExportHistory{
		Filter: export.ProgressFilter{Limit: -1},
	})
	if export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListDatasetsHandler(t *testing.T) {
	names, err := NewListDatasetsHandler(newService(t, nil)).Query(context.Background(), ListDatasets{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(names) != 1 || names[0] != "advisors" {
		t.Fatalf("unexpected datasets %v", names)
	}
}
