package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	excelMaxRows        = 1048576
	excelMaxSheetName   = 31
	defaultSheetName    = "Sheet1"
	DefaultColumnWidth  = 20.0
	sheetNameForbidden  = `[]:*?/\`
	xlsxRowCheckEvery   = 256
	xlsxHeaderRowNumber = 1
)

// XLSXRenderer renders a single-sheet workbook.
type XLSXRenderer struct {
	// ColumnWidth is used for columns without a width hint.
	ColumnWidth float64
	// MaxRows caps data rows; zero or anything above the sheet limit means the sheet limit.
	MaxRows int
}

// Render writes the job into a workbook with one header row and one row per record.
func (r XLSXRenderer) Render(ctx context.Context, job Job, w io.Writer) (RenderStats, error) {
	if err := job.Validate(); err != nil {
		return RenderStats{}, err
	}
	if limit := r.maxRows(); len(job.Rows) > limit {
		return RenderStats{}, NewError(KindValidation, fmt.Sprintf("xlsx row limit exceeded (%d)", limit), nil)
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	sheetName := SheetName(job.Title)
	defaultSheet := file.GetSheetName(0)
	if defaultSheet != sheetName {
		file.SetSheetName(defaultSheet, sheetName)
		if file.GetSheetName(0) != sheetName {
			return RenderStats{}, NewError(KindInternal, fmt.Sprintf("xlsx sheet rename to %q failed", sheetName), nil)
		}
	}

	rtl := job.Direction.RTL()
	if err := file.SetSheetView(sheetName, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return RenderStats{}, NewError(KindInternal, "xlsx sheet view failed", err)
	}

	if err := r.applyColumnWidths(file, sheetName, job.Columns); err != nil {
		return RenderStats{}, err
	}

	headers := make([]any, len(job.Columns))
	for i, label := range job.HeaderLabels() {
		headers[i] = label
	}
	if err := file.SetSheetRow(sheetName, cellRef(1, xlsxHeaderRowNumber), &headers); err != nil {
		return RenderStats{}, NewError(KindInternal, "xlsx header row failed", err)
	}
	if err := applyHeaderStyle(file, sheetName, len(job.Columns), rtl); err != nil {
		return RenderStats{}, err
	}

	stats := RenderStats{}
	for i, row := range job.Rows {
		if i%xlsxRowCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
		cells := make([]any, len(job.Columns))
		for c, col := range job.Columns {
			cells[c] = xlsxCellValue(row, col.Key)
		}
		if err := file.SetSheetRow(sheetName, cellRef(1, i+2), &cells); err != nil {
			return stats, NewError(KindInternal, fmt.Sprintf("xlsx row %d failed", i+1), err)
		}
		stats.Rows++
	}

	cw := &countingWriter{w: w}
	if _, err := file.WriteTo(cw); err != nil {
		return stats, NewError(KindInternal, "xlsx write failed", err)
	}
	stats.Bytes = cw.count
	stats.Pages = 1
	return stats, nil
}

func (r XLSXRenderer) applyColumnWidths(file *excelize.File, sheet string, columns []Column) error {
	fallback := r.ColumnWidth
	if fallback <= 0 {
		fallback = DefaultColumnWidth
	}
	for i, col := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return NewError(KindInternal, "xlsx column name failed", err)
		}
		width := col.Width
		if width <= 0 {
			width = fallback
		}
		width = min(width, excelize.MaxColumnWidth)
		if err := file.SetColWidth(sheet, name, name, width); err != nil {
			return NewError(KindInternal, fmt.Sprintf("xlsx width for column %q failed", col.Key), err)
		}
	}
	return nil
}

func applyHeaderStyle(file *excelize.File, sheet string, columns int, rtl bool) error {
	horizontal := "left"
	if rtl {
		horizontal = "right"
	}
	styleID, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: horizontal, Vertical: "center"},
	})
	if err != nil {
		return NewError(KindInternal, "xlsx header style failed", err)
	}
	if err := file.SetCellStyle(sheet, cellRef(1, xlsxHeaderRowNumber), cellRef(columns, xlsxHeaderRowNumber), styleID); err != nil {
		return NewError(KindInternal, "xlsx header style failed", err)
	}
	return nil
}

// xlsxCellValue keeps numbers numeric so spreadsheet formulas work on them.
func xlsxCellValue(row Row, key string) any {
	value, ok := row[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string, bool, int, int32, int64, uint, uint64, float32, float64:
		return v
	default:
		return stringify(value)
	}
}

// SheetName converts a title into a valid worksheet name.
func SheetName(title string) string {
	name := strings.TrimSpace(title)
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(sheetNameForbidden, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if utf8.RuneCountInString(name) > excelMaxSheetName {
		name = string([]rune(name)[:excelMaxSheetName])
	}
	if name == "" {
		return defaultSheetName
	}
	return name
}

func cellRef(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Sprintf("A%d", row)
	}
	return name
}

func (r XLSXRenderer) maxRows() int {
	if r.MaxRows <= 0 || r.MaxRows > excelMaxRows-1 {
		return excelMaxRows - 1
	}
	return r.MaxRows
}
