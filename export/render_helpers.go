package export

import (
	"bytes"
	"context"
	"io"
)

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}

// NewCountingWriter wraps w and reports how many bytes went through it.
func NewCountingWriter(w io.Writer) (io.Writer, func() int64) {
	cw := &countingWriter{w: w}
	return cw, func() int64 { return cw.count }
}

// RenderBytes renders a job into a private buffer. Bytes are only returned on
// success so callers never see a partial document.
func RenderBytes(ctx context.Context, renderer Renderer, job Job) ([]byte, RenderStats, error) {
	if renderer == nil {
		return nil, RenderStats{}, NewError(KindInternal, "renderer is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, RenderStats{}, err
	}

	var buf bytes.Buffer
	stats, err := renderer.Render(ctx, job, &buf)
	if err != nil {
		return nil, RenderStats{}, err
	}
	if stats.Bytes == 0 {
		stats.Bytes = int64(buf.Len())
	}
	return buf.Bytes(), stats, nil
}
