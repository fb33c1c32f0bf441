package exporthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-school-export/export"
	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T) *http.ServeMux {
	t.Helper()
	datasets := export.NewDatasetRegistry()
	err := datasets.Register("programs", export.DatasetSourceFunc(func(ctx context.Context, req export.DatasetRequest) (export.Dataset, error) {
		return export.Dataset{
			Title: "Programs",
			Columns: []export.Column{
				{Header: "Name", Key: "name"},
				{Header: "Status", Key: "status"},
			},
			Rows: []export.Row{
				{"name": "Robotics Club", "status": req.Params["status"]},
			},
			Direction: export.DirectionRTL,
		}, nil
	}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	svc := export.NewService(export.ServiceConfig{
		Datasets:    datasets,
		Tracker:     export.NewMemoryTracker(),
		IDGenerator: func() string { return "exp-42" },
		Now:         func() time.Time { return time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC) },
	})
	mux := http.NewServeMux()
	NewHandler(Config{Service: svc}).RegisterRoutes(mux)
	return mux
}

func TestHandler_DownloadXLSX(t *testing.T) {
	mux := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/exports/programs?format=xlsx&status=active", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Export-ID"); got != "exp-42" {
		t.Fatalf("expected export id header, got %q", got)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".xlsx") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()
	value, err := book.GetCellValue("Programs", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if value != "active" {
		t.Fatalf("expected status param in row, got %q", value)
	}
}

func TestHandler_ErrorJSON(t *testing.T) {
	mux := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/exports/programs?format=odt", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected json error, got %q", rec.Header().Get("Content-Type"))
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation" || body.Error.Message == "" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestHandler_DatasetsAndHistory(t *testing.T) {
	mux := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/exports/datasets", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"programs"`) {
		t.Fatalf("unexpected datasets response %d %s", rec.Code, rec.Body.String())
	}

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/exports/programs?format=csv", nil))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/exports/history?state=completed", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Records []export.ExportRecord `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Records) != 1 || body.Records[0].Format != export.FormatCSV {
		t.Fatalf("unexpected history %+v", body.Records)
	}
}
