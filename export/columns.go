package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout used when a renderer is handed a raw time value.
const DateLayout = "2006-01-02"

// ParseDirection parses a direction flag; an empty value returns fallback.
func ParseDirection(value string, fallback Direction) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return fallback, nil
	case "rtl", "right-to-left":
		return DirectionRTL, nil
	case "ltr", "left-to-right":
		return DirectionLTR, nil
	default:
		return "", NewError(KindValidation, fmt.Sprintf("unknown direction %q", value), nil)
	}
}

// Validate checks the job shape renderers rely on.
func (j Job) Validate() error {
	if len(j.Columns) == 0 {
		return NewError(KindValidation, "job has no columns", nil)
	}
	seen := make(map[string]struct{}, len(j.Columns))
	for i, col := range j.Columns {
		if strings.TrimSpace(col.Key) == "" {
			return NewError(KindValidation, fmt.Sprintf("column %d has no key", i), nil)
		}
		if _, ok := seen[col.Key]; ok {
			return NewError(KindValidation, fmt.Sprintf("duplicate column key %q", col.Key), nil)
		}
		if col.Width < 0 {
			return NewError(KindValidation, fmt.Sprintf("column %q has a negative width", col.Key), nil)
		}
		seen[col.Key] = struct{}{}
	}
	return nil
}

// HeaderLabels returns the header labels in column order.
func (j Job) HeaderLabels() []string {
	labels := make([]string, len(j.Columns))
	for i, col := range j.Columns {
		labels[i] = col.Label()
	}
	return labels
}

// Label returns the header, falling back to the key.
func (c Column) Label() string {
	if c.Header != "" {
		return c.Header
	}
	return c.Key
}

// Weight is the column's share in proportional width computations.
func (c Column) Weight() float64 {
	if c.Width > 0 {
		return c.Width
	}
	return 1
}

// ColumnWeights returns each column's width share, 1 for columns without a hint.
func ColumnWeights(columns []Column) []float64 {
	weights := make([]float64, len(columns))
	for i, col := range columns {
		weights[i] = col.Weight()
	}
	return weights
}

// CellText returns the display string for a row value. Missing keys render empty.
func CellText(row Row, key string) string {
	if row == nil {
		return ""
	}
	value, ok := row[key]
	if !ok {
		return ""
	}
	return stringify(value)
}

// Cells returns the row's display strings in column order.
func (r Row) Cells(columns []Column) []string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = CellText(r, col.Key)
	}
	return cells
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(DateLayout)
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return v.Format(DateLayout)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(value)
	}
}
