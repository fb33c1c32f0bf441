package exporttemplate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-school-export/export"
)

// DefaultMaxRows bounds how many rows a single HTML document may hold.
const DefaultMaxRows = 10000

// DefaultNoDataText is shown when the job has no rows.
const DefaultNoDataText = "No data available"

// Header is the institution block printed above the title.
type Header struct {
	ForeignLabel     string
	LocalLabel       string
	LogoURL          string
	PlaceholderLabel string
}

// Renderer renders a job through a pongo2 template.
type Renderer struct {
	// Template overrides DefaultTemplate.
	Template   string
	Header     Header
	NoDataText string
	Lang       string
	FontFamily string
	MaxRows    int
	Now        func() time.Time
}

// Render executes the template and writes the HTML document to w.
func (r Renderer) Render(ctx context.Context, job export.Job, w io.Writer) (export.RenderStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := job.Validate(); err != nil {
		return export.RenderStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return export.RenderStats{}, err
	}

	maxRows := r.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if len(job.Rows) > maxRows {
		return export.RenderStats{}, export.NewError(export.KindValidation, fmt.Sprintf("html renderer max rows exceeded (%d)", maxRows), nil)
	}

	source := r.Template
	if source == "" {
		source = DefaultTemplate
	}
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return export.RenderStats{}, export.NewError(export.KindInternal, "html template parse failed", err)
	}

	data, err := r.context(ctx, job)
	if err != nil {
		return export.RenderStats{}, err
	}

	out, written := export.NewCountingWriter(w)
	if err := tpl.ExecuteWriter(data, out); err != nil {
		return export.RenderStats{}, export.NewError(export.KindInternal, "html template execute failed", err)
	}
	return export.RenderStats{Rows: int64(len(job.Rows)), Bytes: written()}, nil
}

func (r Renderer) context(ctx context.Context, job export.Job) (pongo2.Context, error) {
	weights := export.ColumnWeights(job.Columns)
	total := 0.0
	for _, weight := range weights {
		total += weight
	}
	columns := make([]map[string]any, len(job.Columns))
	for i, column := range job.Columns {
		columns[i] = map[string]any{
			"key":     column.Key,
			"label":   column.Label(),
			"percent": weights[i] / total * 100,
		}
	}

	rows := make([][]string, 0, len(job.Rows))
	for i, row := range job.Rows {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row.Cells(job.Columns))
	}

	direction := job.Direction
	if direction == "" {
		direction = export.DirectionLTR
	}
	noData := r.NoDataText
	if noData == "" {
		noData = DefaultNoDataText
	}
	placeholder := r.Header.PlaceholderLabel
	if placeholder == "" {
		placeholder = "LOGO"
	}
	font := r.FontFamily
	if font == "" {
		font = "Vazirmatn, Tahoma, sans-serif"
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	return pongo2.Context{
		"title":       job.Title,
		"dir":         string(direction),
		"lang":        r.Lang,
		"font_family": font,
		"columns":     columns,
		"rows":        rows,
		"no_data":     noData,
		"generated":   now().Format(export.DateLayout),
		"header": map[string]any{
			"foreign":     r.Header.ForeignLabel,
			"local":       r.Header.LocalLabel,
			"logo":        r.Header.LogoURL,
			"placeholder": placeholder,
		},
	}, nil
}
