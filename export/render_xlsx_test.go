package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	t.Cleanup(func() {
		_ = file.Close()
	})
	return file
}

func TestXLSXRenderer_WritesHeaderAndRows(t *testing.T) {
	job := Job{
		Title: "Students",
		Columns: []Column{
			{Header: "Name", Key: "name"},
			{Header: "Grade", Key: "grade"},
		},
		Rows: []Row{
			{"name": "Ali", "grade": "10"},
			{"name": "Sara", "grade": "9"},
		},
		Direction: DirectionRTL,
	}

	data, stats, err := RenderBytes(context.Background(), XLSXRenderer{}, job)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if stats.Rows != 2 {
		t.Fatalf("expected 2 rows, got %d", stats.Rows)
	}
	if stats.Bytes != int64(len(data)) {
		t.Fatalf("expected bytes %d, got %d", len(data), stats.Bytes)
	}

	file := openWorkbook(t, data)
	if sheets := file.GetSheetList(); len(sheets) != 1 || sheets[0] != "Students" {
		t.Fatalf("expected one sheet named Students, got %v", sheets)
	}

	rows, err := file.GetRows("Students")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	want := [][]string{{"Name", "Grade"}, {"Ali", "10"}, {"Sara", "9"}}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(rows), rows)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Fatalf("row %d: expected %v, got %v", i+1, want[i], rows[i])
		}
	}

	view, err := file.GetSheetView("Students", 0)
	if err != nil {
		t.Fatalf("get sheet view: %v", err)
	}
	if view.RightToLeft == nil || !*view.RightToLeft {
		t.Fatalf("expected right-to-left view flag")
	}
}

func TestXLSXRenderer_LeftToRightView(t *testing.T) {
	job := Job{
		Title:     "Advisors",
		Columns:   []Column{{Header: "Name", Key: "name"}},
		Rows:      []Row{{"name": "Reza"}},
		Direction: DirectionLTR,
	}
	data, _, err := RenderBytes(context.Background(), XLSXRenderer{}, job)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	view, err := openWorkbook(t, data).GetSheetView("Advisors", 0)
	if err != nil {
		t.Fatalf("get sheet view: %v", err)
	}
	if view.RightToLeft != nil && *view.RightToLeft {
		t.Fatalf("expected left-to-right view")
	}
}

func TestXLSXRenderer_MissingValuesAreEmpty(t *testing.T) {
	job := Job{
		Title: "Attendance",
		Columns: []Column{
			{Header: "Name", Key: "name"},
			{Header: "Note", Key: "note"},
			{Header: "Status", Key: "status"},
		},
		Rows: []Row{{"name": "Ali", "status": "present"}},
	}
	data, _, err := RenderBytes(context.Background(), XLSXRenderer{}, job)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	file := openWorkbook(t, data)
	value, err := file.GetCellValue("Attendance", "B2")
	if err != nil {
		t.Fatalf("get cell: %v", err)
	}
	if value != "" {
		t.Fatalf("expected empty cell for missing key, got %q", value)
	}
	status, err := file.GetCellValue("Attendance", "C2")
	if err != nil {
		t.Fatalf("get cell: %v", err)
	}
	if status != "present" {
		t.Fatalf("expected status after missing cell, got %q", status)
	}
}

func TestXLSXRenderer_ColumnWidths(t *testing.T) {
	job := Job{
		Title: "Programs",
		Columns: []Column{
			{Header: "Name", Key: "name", Width: 35},
			{Header: "Capacity", Key: "capacity"},
		},
	}
	data, _, err := RenderBytes(context.Background(), XLSXRenderer{}, job)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	file := openWorkbook(t, data)

	width, err := file.GetColWidth("Programs", "A")
	if err != nil {
		t.Fatalf("get width: %v", err)
	}
	if width != 35 {
		t.Fatalf("expected hinted width 35, got %v", width)
	}
	width, err = file.GetColWidth("Programs", "B")
	if err != nil {
		t.Fatalf("get width: %v", err)
	}
	if width != DefaultColumnWidth {
		t.Fatalf("expected default width %v, got %v", DefaultColumnWidth, width)
	}
}

func TestXLSXRenderer_ColumnWidthClamped(t *testing.T) {
	tests := []struct {
		name     string
		renderer XLSXRenderer
		column   Column
	}{
		{name: "hint", column: Column{Header: "Name", Key: "name", Width: 1000}},
		{name: "fallback", renderer: XLSXRenderer{ColumnWidth: 400}, column: Column{Header: "Name", Key: "name"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			job := Job{Title: "Programs", Columns: []Column{tc.column}, Rows: []Row{{"name": "Chess"}}}
			data, _, err := RenderBytes(context.Background(), tc.renderer, job)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			width, err := openWorkbook(t, data).GetColWidth("Programs", "A")
			if err != nil {
				t.Fatalf("get width: %v", err)
			}
			if width != excelize.MaxColumnWidth {
				t.Fatalf("expected width clamped to %d, got %v", excelize.MaxColumnWidth, width)
			}
		})
	}
}

func TestXLSXRenderer_NumbersStayNumeric(t *testing.T) {
	job := Job{
		Title:   "Programs",
		Columns: []Column{{Header: "Capacity", Key: "capacity"}},
		Rows:    []Row{{"capacity": 25}},
	}
	data, _, err := RenderBytes(context.Background(), XLSXRenderer{}, job)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	cellType, err := openWorkbook(t, data).GetCellType("Programs", "A2")
	if err != nil {
		t.Fatalf("get cell type: %v", err)
	}
	if cellType == excelize.CellTypeSharedString || cellType == excelize.CellTypeInlineString {
		t.Fatalf("expected numeric cell, got type %v", cellType)
	}
}

func TestXLSXRenderer_RejectsInvalidJob(t *testing.T) {
	var buf bytes.Buffer
	_, err := XLSXRenderer{}.Render(context.Background(), Job{Title: "x"}, &buf)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestXLSXRenderer_RowLimit(t *testing.T) {
	job := Job{
		Title:   "Programs",
		Columns: []Column{{Header: "Name", Key: "name"}},
		Rows:    []Row{{"name": "a"}, {"name": "b"}, {"name": "c"}},
	}

	var buf bytes.Buffer
	_, err := XLSXRenderer{MaxRows: 2}.Render(context.Background(), job, &buf)
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output over the row limit")
	}

	if _, err := (XLSXRenderer{MaxRows: 3}).Render(context.Background(), job, &buf); err != nil {
		t.Fatalf("expected rows at the limit to render: %v", err)
	}
	if got := (XLSXRenderer{MaxRows: excelMaxRows * 2}).maxRows(); got != excelMaxRows-1 {
		t.Fatalf("expected sheet limit cap, got %d", got)
	}
}

func TestSheetName(t *testing.T) {
	cases := map[string]string{
		"":                     "Sheet1",
		"  Students  ":         "Students",
		"Attendance 2024/09":   "Attendance 2024_09",
		"'quoted'":             "quoted",
		strings.Repeat("x", 40): strings.Repeat("x", 31),
	}
	for input, want := range cases {
		if got := SheetName(input); got != want {
			t.Fatalf("SheetName(%q): expected %q, got %q", input, want, got)
		}
	}
}
