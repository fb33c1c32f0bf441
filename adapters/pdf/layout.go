package exportpdf

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-school-export/export"
)

// Landscape A4 in points.
const (
	A4LandscapeWidth  = 841.89
	A4LandscapeHeight = 595.28
)

// Margins are page margins in points.
type Margins struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// DefaultMargins reserve the top band for the institution header.
var DefaultMargins = Margins{Top: 100, Bottom: 50, Left: 50, Right: 50}

// PageMetrics describe the page canvas used for a whole document.
type PageMetrics struct {
	Width   float64
	Height  float64
	Margins Margins
}

// A4Landscape returns the default page metrics.
func A4Landscape() PageMetrics {
	return PageMetrics{Width: A4LandscapeWidth, Height: A4LandscapeHeight, Margins: DefaultMargins}
}

// UsableWidth is the page width minus the side margins.
func (m PageMetrics) UsableWidth() float64 {
	return m.Width - m.Margins.Left - m.Margins.Right
}

// ContentBottom is the lowest y a row may reach.
func (m PageMetrics) ContentBottom() float64 {
	return m.Height - m.Margins.Bottom
}

// TableStyle controls row geometry.
type TableStyle struct {
	LineHeight  float64
	CellPadding float64
	RowGap      float64
}

// DefaultTableStyle matches a 10pt body font.
var DefaultTableStyle = TableStyle{LineHeight: 14, CellPadding: 4, RowGap: 4}

// TextMeasurer reports the rendered width of a string in points.
type TextMeasurer interface {
	Width(text string) float64
}

// ColumnBox is the horizontal extent of one column.
type ColumnBox struct {
	X     float64
	Width float64
}

// Right edge of the box.
func (b ColumnBox) Right() float64 {
	return b.X + b.Width
}

// RowBox is one laid out table row. Index -1 is the table header.
type RowBox struct {
	Index  int
	Page   int
	Y      float64
	Height float64
	Lines  [][]string
	Rule   bool
}

// TablePlan is the full geometry of a table before anything is drawn.
type TablePlan struct {
	Columns []ColumnBox
	Header  RowBox
	Rows    []RowBox
	Pages   int
}

// ColumnWidths shares the usable width by weight; a column without a hint weighs 1.
func ColumnWidths(columns []export.Column, usable float64) []float64 {
	weights := export.ColumnWeights(columns)
	total := 0.0
	for _, weight := range weights {
		total += weight
	}
	widths := make([]float64, len(weights))
	if total <= 0 {
		return widths
	}
	for i, weight := range weights {
		widths[i] = weight / total * usable
	}
	return widths
}

// ColumnBoxes places columns from the leading edge: the right margin for
// right-to-left documents, the left margin otherwise.
func ColumnBoxes(widths []float64, metrics PageMetrics, rtl bool) []ColumnBox {
	boxes := make([]ColumnBox, len(widths))
	if rtl {
		cursor := metrics.Width - metrics.Margins.Right
		for i, width := range widths {
			cursor -= width
			boxes[i] = ColumnBox{X: cursor, Width: width}
		}
		return boxes
	}
	cursor := metrics.Margins.Left
	for i, width := range widths {
		boxes[i] = ColumnBox{X: cursor, Width: width}
		cursor += width
	}
	return boxes
}

// ellipsis ends a cell that was cut to fit on one page.
const ellipsis = "…"

// planTable lays out the header and every row, breaking pages when a row
// would cross the bottom margin. Continuation pages start at the top margin.
// A cell never wraps to more lines than a fresh page holds, so every row fits
// on some page.
func planTable(job export.Job, metrics PageMetrics, style TableStyle, measure TextMeasurer, startY float64) TablePlan {
	widths := ColumnWidths(job.Columns, metrics.UsableWidth())
	plan := TablePlan{
		Columns: ColumnBoxes(widths, metrics, job.Direction.RTL()),
		Pages:   1,
	}

	plan.Header = planRow(-1, job.HeaderLabels(), widths, style, measure, linesThatFit(metrics.ContentBottom()-startY, style))
	plan.Header.Page = 1
	plan.Header.Y = startY

	page := 1
	y := startY + plan.Header.Height + style.RowGap
	plan.Rows = make([]RowBox, 0, len(job.Rows))
	pageLines := linesThatFit(metrics.ContentBottom()-metrics.Margins.Top, style)
	for i, row := range job.Rows {
		box := planRow(i, row.Cells(job.Columns), widths, style, measure, pageLines)
		firstOnPage := page > 1 && y == metrics.Margins.Top
		if y+box.Height > metrics.ContentBottom() && !firstOnPage {
			page++
			y = metrics.Margins.Top
		}
		box.Page = page
		box.Y = y
		box.Rule = i < len(job.Rows)-1
		plan.Rows = append(plan.Rows, box)
		y += box.Height + style.RowGap
	}
	plan.Pages = page
	return plan
}

// linesThatFit is the number of text lines a row of the given height holds,
// never less than one.
func linesThatFit(height float64, style TableStyle) int {
	if style.LineHeight <= 0 {
		return 1
	}
	n := int(math.Floor((height - 2*style.CellPadding) / style.LineHeight))
	if n < 1 {
		return 1
	}
	return n
}

func planRow(index int, cells []string, widths []float64, style TableStyle, measure TextMeasurer, limit int) RowBox {
	box := RowBox{Index: index, Lines: make([][]string, len(cells))}
	maxLines := 1
	for i, cell := range cells {
		width := widths[i] - 2*style.CellPadding
		lines := wrapText(measure, cell, width)
		if len(lines) > limit {
			lines = lines[:limit]
			lines[limit-1] = withEllipsis(measure, lines[limit-1], width)
		}
		box.Lines[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	box.Height = float64(maxLines)*style.LineHeight + 2*style.CellPadding
	return box
}

// wrapText breaks text into lines no wider than width. Words wider than a
// line are split by rune. Explicit newlines are kept.
func wrapText(measure TextMeasurer, text string, width float64) []string {
	if text == "" {
		return []string{""}
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(measure, paragraph, width)...)
	}
	return lines
}

func wrapParagraph(measure TextMeasurer, text string, width float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure.Width(candidate) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if measure.Width(word) <= width {
			current = word
			continue
		}
		pieces := splitWord(measure, word, width)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current = pieces[len(pieces)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// withEllipsis drops trailing runes from line until it fits width with the
// ellipsis appended.
func withEllipsis(measure TextMeasurer, line string, width float64) string {
	line = strings.TrimRight(line, " ")
	for line != "" && measure.Width(line+ellipsis) > width {
		_, size := utf8.DecodeLastRuneInString(line)
		line = strings.TrimRight(line[:len(line)-size], " ")
	}
	return line + ellipsis
}

func splitWord(measure TextMeasurer, word string, width float64) []string {
	var pieces []string
	start := 0
	for start < len(word) {
		end := start
		for end < len(word) {
			_, size := utf8.DecodeRuneInString(word[end:])
			if end > start && measure.Width(word[start:end+size]) > width {
				break
			}
			end += size
		}
		pieces = append(pieces, word[start:end])
		start = end
	}
	return pieces
}
