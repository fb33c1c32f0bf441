package export

import (
	"context"
	"io"
	"time"
)

// Format is the export output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// Direction is the horizontal flow of a rendered document.
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

// RTL reports whether the direction mirrors column order.
func (d Direction) RTL() bool {
	return d == DirectionRTL
}

// Column describes one rendered column.
// Width is a relative or absolute hint; zero means no hint.
type Column struct {
	Header string  `json:"header"`
	Key    string  `json:"key"`
	Width  float64 `json:"width,omitempty"`
}

// Row maps column keys to display-ready scalars.
type Row map[string]any

// Job is a single export render input. It only lives for one render call.
type Job struct {
	Title     string
	Columns   []Column
	Rows      []Row
	Direction Direction
}

// Renderer writes a job to the destination.
type Renderer interface {
	Render(ctx context.Context, job Job, w io.Writer) (RenderStats, error)
}

// RendererFunc adapts a function to a Renderer.
type RendererFunc func(ctx context.Context, job Job, w io.Writer) (RenderStats, error)

func (f RendererFunc) Render(ctx context.Context, job Job, w io.Writer) (RenderStats, error) {
	if f == nil {
		return RenderStats{}, NewError(KindInternal, "renderer func is nil", nil)
	}
	return f(ctx, job, w)
}

// RenderStats capture renderer output.
type RenderStats struct {
	Rows  int64
	Bytes int64
	Pages int
}

// Dataset is what a dataset source hands to the renderers.
type Dataset struct {
	Title     string
	Columns   []Column
	Rows      []Row
	Direction Direction
}

// DatasetRequest selects a dataset and carries its filters.
type DatasetRequest struct {
	Name   string
	Locale string
	Params map[string]string
}

// DatasetSource fetches display-ready rows for a named dataset.
type DatasetSource interface {
	Fetch(ctx context.Context, req DatasetRequest) (Dataset, error)
}

// DatasetSourceFunc adapts a function to a DatasetSource.
type DatasetSourceFunc func(ctx context.Context, req DatasetRequest) (Dataset, error)

func (f DatasetSourceFunc) Fetch(ctx context.Context, req DatasetRequest) (Dataset, error) {
	if f == nil {
		return Dataset{}, NewError(KindInternal, "dataset source func is nil", nil)
	}
	return f(ctx, req)
}

// ExportRequest captures an export request at the service boundary.
type ExportRequest struct {
	Dataset   string            `json:"dataset" validate:"required"`
	Format    Format            `json:"format" validate:"required"`
	Locale    string            `json:"locale,omitempty"`
	Direction Direction         `json:"direction,omitempty" validate:"omitempty,oneof=ltr rtl"`
	Params    map[string]string `json:"params,omitempty"`
}

// ExportResult captures a completed export.
type ExportResult struct {
	ID          string
	Dataset     string
	Format      Format
	Filename    string
	ContentType string
	Rows        int64
	Bytes       int64
	Pages       int
	Data        []byte
}

// ExportState captures audit states.
type ExportState string

const (
	StateRunning   ExportState = "running"
	StateCompleted ExportState = "completed"
	StateFailed    ExportState = "failed"
)

// ExportRecord is the audit entry kept for an export. It never holds document bytes.
type ExportRecord struct {
	ID          string      `json:"id"`
	Dataset     string      `json:"dataset"`
	Format      Format      `json:"format"`
	Locale      string      `json:"locale,omitempty"`
	State       ExportState `json:"state"`
	Rows        int64       `json:"rows"`
	Bytes       int64       `json:"bytes"`
	Pages       int         `json:"pages,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt time.Time   `json:"completed_at,omitempty"`
}

// ProgressFilter filters tracker lists.
type ProgressFilter struct {
	Dataset string
	State   ExportState
	Since   time.Time
	Limit   int
}

// Tracker records export runs.
type Tracker interface {
	Start(ctx context.Context, record ExportRecord) (string, error)
	Complete(ctx context.Context, id string, stats RenderStats) error
	Fail(ctx context.Context, id string, err error) error
	List(ctx context.Context, filter ProgressFilter) ([]ExportRecord, error)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
