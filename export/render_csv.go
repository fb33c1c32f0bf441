package export

import (
	"context"
	"encoding/csv"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVRenderer renders CSV output.
type CSVRenderer struct {
	Delimiter rune
	// BOM prefixes the output so spreadsheet apps detect UTF-8 text.
	BOM bool
}

// Render writes a header row followed by one record per row.
func (r CSVRenderer) Render(ctx context.Context, job Job, w io.Writer) (RenderStats, error) {
	if err := job.Validate(); err != nil {
		return RenderStats{}, err
	}

	cw := &countingWriter{w: w}
	if r.BOM {
		if _, err := cw.Write(utf8BOM); err != nil {
			return RenderStats{}, err
		}
	}

	writer := csv.NewWriter(cw)
	if r.Delimiter != 0 {
		writer.Comma = r.Delimiter
	}

	if err := writer.Write(job.HeaderLabels()); err != nil {
		return RenderStats{}, err
	}

	stats := RenderStats{}
	for _, row := range job.Rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := writer.Write(row.Cells(job.Columns)); err != nil {
			return stats, err
		}
		stats.Rows++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return stats, err
	}

	stats.Bytes = cw.count
	return stats, nil
}
