package exportpdf

import (
	"context"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/goliatone/go-school-export/export"
)

// DefaultNoDataText is shown instead of a table when a job has no rows.
const DefaultNoDataText = "No data available"

const (
	defaultFontFamily = "body"
	defaultFontSize   = 10.0
	defaultTitleSize  = 16.0
	titleGap          = 10.0
)

// DocumentRenderer draws paged PDF tables directly on a canvas.
//
// Page 1 carries the institution header and the title; continuation pages
// only re-apply the body font. Missing logo assets fall back to a placeholder
// box; any other drawing error fails the whole render.
type DocumentRenderer struct {
	Metrics PageMetrics
	Style   TableStyle
	// FontPath or FontBytes select a UTF-8 TrueType font that covers the
	// document script. Without either the embedded DefaultFont is used.
	FontPath  string
	FontBytes []byte
	// CoreFont draws with the core Helvetica font instead. Helvetica only
	// encodes cp1252, so it is limited to Latin documents.
	CoreFont   bool
	FontFamily string
	FontSize   float64
	TitleSize  float64
	Header     InstitutionHeader
	NoDataText string
	// Uncompressed disables stream compression, mostly useful when inspecting output.
	Uncompressed bool
	Logger       export.Logger
}

// canvas is the per-render drawing state. It is never shared between renders.
type canvas struct {
	pdf      *fpdf.Fpdf
	metrics  PageMetrics
	family   string
	bodySize float64
	rtl      bool
	tr       func(string) string
}

func (c *canvas) setFont(style string, size float64) {
	c.pdf.SetFont(c.family, style, size)
}

// text prepares a logical-order string for drawing.
func (c *canvas) text(s string) string {
	return c.tr(visualOrder(s, c.rtl))
}

// Width satisfies TextMeasurer with the current font.
func (c *canvas) Width(s string) float64 {
	return c.pdf.GetStringWidth(c.tr(s))
}

// Render draws the job and writes the finished document to w.
func (r DocumentRenderer) Render(ctx context.Context, job export.Job, w io.Writer) (export.RenderStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := job.Validate(); err != nil {
		return export.RenderStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return export.RenderStats{}, err
	}

	doc, err := r.open(job)
	if err != nil {
		return export.RenderStats{}, err
	}

	r.drawHeader(doc)
	y := r.drawTitle(doc, job)
	if len(job.Rows) == 0 {
		r.drawNoData(doc, y)
	} else if err := r.drawTable(ctx, doc, job, y); err != nil {
		return export.RenderStats{}, err
	}

	if doc.pdf.Err() {
		return export.RenderStats{}, export.NewError(export.KindInternal, "pdf drawing failed", doc.pdf.Error())
	}

	pages := doc.pdf.PageCount()
	out, written := export.NewCountingWriter(w)
	if err := doc.pdf.Output(out); err != nil {
		return export.RenderStats{}, export.NewError(export.KindInternal, "pdf output failed", err)
	}

	return export.RenderStats{
		Rows:  int64(len(job.Rows)),
		Bytes: written(),
		Pages: pages,
	}, nil
}

func (r DocumentRenderer) open(job export.Job) (*canvas, error) {
	metrics := r.metrics()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: metrics.Width, Ht: metrics.Height},
	})
	pdf.SetMargins(metrics.Margins.Left, metrics.Margins.Top, metrics.Margins.Right)
	pdf.SetAutoPageBreak(false, metrics.Margins.Bottom)
	pdf.SetCompression(!r.Uncompressed)
	pdf.SetTitle(job.Title, true)

	doc := &canvas{
		pdf:      pdf,
		metrics:  metrics,
		family:   r.FontFamily,
		bodySize: r.FontSize,
		rtl:      job.Direction.RTL(),
		tr:       func(s string) string { return s },
	}
	if doc.family == "" {
		doc.family = defaultFontFamily
	}
	if doc.bodySize <= 0 {
		doc.bodySize = defaultFontSize
	}

	if r.CoreFont {
		doc.family = "Helvetica"
		doc.tr = pdf.UnicodeTranslatorFromDescriptor("")
	} else {
		regular, bold, err := r.fonts()
		if err != nil {
			return nil, err
		}
		pdf.AddUTF8FontFromBytes(doc.family, "", regular)
		pdf.AddUTF8FontFromBytes(doc.family, "B", bold)
	}
	if pdf.Err() {
		return nil, export.NewError(export.KindInternal, "pdf font registration failed", pdf.Error())
	}

	pdf.AddPage()
	doc.setFont("", doc.bodySize)
	return doc, nil
}

// fonts returns the regular and bold faces. A caller supplied font serves
// both styles.
func (r DocumentRenderer) fonts() ([]byte, []byte, error) {
	if len(r.FontBytes) > 0 {
		return r.FontBytes, r.FontBytes, nil
	}
	if r.FontPath != "" {
		data, err := os.ReadFile(r.FontPath)
		if err != nil {
			return nil, nil, export.NewError(export.KindInternal, "pdf font could not be read", err)
		}
		return data, data, nil
	}
	return DefaultFont, DefaultBoldFont, nil
}

func (r DocumentRenderer) drawTitle(doc *canvas, job export.Job) float64 {
	size := r.TitleSize
	if size <= 0 {
		size = defaultTitleSize
	}
	metrics := doc.metrics
	height := size * 1.4

	doc.setFont("B", size)
	doc.pdf.SetXY(metrics.Margins.Left, metrics.Margins.Top)
	doc.pdf.CellFormat(metrics.UsableWidth(), height, doc.text(job.Title), "", 0, alignFor(job.Direction), false, 0, "")
	doc.setFont("", doc.bodySize)
	return metrics.Margins.Top + height + titleGap
}

func (r DocumentRenderer) drawNoData(doc *canvas, y float64) {
	text := r.NoDataText
	if text == "" {
		text = DefaultNoDataText
	}
	metrics := doc.metrics
	doc.setFont("", doc.bodySize+2)
	doc.pdf.SetXY(metrics.Margins.Left, y+2*doc.bodySize)
	doc.pdf.CellFormat(metrics.UsableWidth(), (doc.bodySize+2)*1.4, doc.text(text), "", 0, "C", false, 0, "")
	doc.setFont("", doc.bodySize)
}

func (r DocumentRenderer) drawTable(ctx context.Context, doc *canvas, job export.Job, startY float64) error {
	style := r.style(doc.bodySize)
	plan := planTable(job, doc.metrics, style, doc, startY)
	align := alignFor(job.Direction)
	metrics := doc.metrics

	doc.pdf.SetFillColor(235, 235, 235)
	doc.pdf.Rect(metrics.Margins.Left, plan.Header.Y, metrics.UsableWidth(), plan.Header.Height, "F")
	drawCells(doc, plan.Columns, plan.Header, style, align)
	ruleY := plan.Header.Y + plan.Header.Height + style.RowGap/2
	doc.pdf.SetDrawColor(60, 60, 60)
	doc.pdf.SetLineWidth(0.8)
	doc.pdf.Line(metrics.Margins.Left, ruleY, metrics.Width-metrics.Margins.Right, ruleY)

	page := 1
	for i, box := range plan.Rows {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if box.Page != page {
			doc.pdf.AddPage()
			doc.setFont("", doc.bodySize)
			page = box.Page
		}
		drawCells(doc, plan.Columns, box, style, align)
		if box.Rule {
			y := box.Y + box.Height + style.RowGap/2
			doc.pdf.SetDrawColor(210, 210, 210)
			doc.pdf.SetLineWidth(0.4)
			doc.pdf.Line(metrics.Margins.Left, y, metrics.Width-metrics.Margins.Right, y)
		}
		if doc.pdf.Err() {
			return export.NewError(export.KindInternal, "pdf row drawing failed", doc.pdf.Error())
		}
	}
	return nil
}

func drawCells(doc *canvas, columns []ColumnBox, box RowBox, style TableStyle, align string) {
	for c, column := range columns {
		for j, line := range box.Lines[c] {
			doc.pdf.SetXY(column.X+style.CellPadding, box.Y+style.CellPadding+float64(j)*style.LineHeight)
			doc.pdf.CellFormat(column.Width-2*style.CellPadding, style.LineHeight, doc.text(line), "", 0, align, false, 0, "")
		}
	}
}

func alignFor(direction export.Direction) string {
	if direction.RTL() {
		return "RM"
	}
	return "LM"
}

func (r DocumentRenderer) metrics() PageMetrics {
	metrics := r.Metrics
	if metrics.Width <= 0 || metrics.Height <= 0 {
		metrics.Width = A4LandscapeWidth
		metrics.Height = A4LandscapeHeight
	}
	if metrics.Margins == (Margins{}) {
		metrics.Margins = DefaultMargins
	}
	return metrics
}

func (r DocumentRenderer) style(fontSize float64) TableStyle {
	style := r.Style
	if style.LineHeight <= 0 {
		style.LineHeight = fontSize * 1.4
	}
	if style.CellPadding <= 0 {
		style.CellPadding = DefaultTableStyle.CellPadding
	}
	if style.RowGap <= 0 {
		style.RowGap = DefaultTableStyle.RowGap
	}
	return style
}

func (r DocumentRenderer) logger() export.Logger {
	if r.Logger == nil {
		return export.NopLogger{}
	}
	return r.Logger
}
