package exportpdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/goliatone/go-school-export/export"
)

// DefaultMaxHTMLBytes guards in-memory HTML buffering before PDF conversion.
const DefaultMaxHTMLBytes int64 = 8 * 1024 * 1024

// RenderRequest contains HTML input and print options for PDF engines.
type RenderRequest struct {
	HTML    []byte
	Options PDFOptions
}

// Engine renders HTML content into PDF bytes.
type Engine interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// EngineFunc adapts a function to an Engine.
type EngineFunc func(ctx context.Context, req RenderRequest) ([]byte, error)

func (f EngineFunc) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if f == nil {
		return nil, errors.New("pdf engine func is nil")
	}
	return f(ctx, req)
}

// HTMLRenderer renders the job as HTML and converts it to PDF with an engine.
// It is the alternative to DocumentRenderer when a browser engine is available.
type HTMLRenderer struct {
	HTML         export.Renderer
	Engine       Engine
	Options      PDFOptions
	MaxHTMLBytes int64
}

// Render buffers the HTML document, converts it, and writes the PDF to w.
func (r HTMLRenderer) Render(ctx context.Context, job export.Job, w io.Writer) (export.RenderStats, error) {
	if r.HTML == nil {
		return export.RenderStats{}, export.NewError(export.KindValidation, "pdf renderer requires html renderer", nil)
	}
	if r.Engine == nil {
		return export.RenderStats{}, export.NewError(export.KindValidation, "pdf renderer requires engine", nil)
	}

	buffer := newLimitedBuffer(r.MaxHTMLBytes)
	htmlStats, err := r.HTML.Render(ctx, job, buffer)
	if err != nil {
		return export.RenderStats{}, err
	}

	pdf, err := r.Engine.Render(ctx, RenderRequest{
		HTML:    buffer.Bytes(),
		Options: r.Options,
	})
	if err != nil {
		return export.RenderStats{}, err
	}
	if len(pdf) == 0 {
		return export.RenderStats{}, export.NewError(export.KindInternal, "pdf engine returned no output", nil)
	}

	out, written := export.NewCountingWriter(w)
	if _, err := out.Write(pdf); err != nil {
		return export.RenderStats{Rows: htmlStats.Rows, Bytes: written()}, err
	}
	return export.RenderStats{Rows: htmlStats.Rows, Bytes: written()}, nil
}

// WKHTMLTOPDFEngine invokes wkhtmltopdf for HTML-to-PDF conversion.
type WKHTMLTOPDFEngine struct {
	Command string
	Args    []string
	Env     []string
	Timeout time.Duration
}

// Render executes wkhtmltopdf using stdin/stdout for HTML/PDF.
func (e WKHTMLTOPDFEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	cmdPath := strings.TrimSpace(e.Command)
	if cmdPath == "" {
		cmdPath = "wkhtmltopdf"
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cmdCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := append(wkhtmltopdfArgs(req.Options), e.Args...)
	args = append(args, "-", "-")
	cmd := exec.CommandContext(cmdCtx, cmdPath, args...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.Stdin = bytes.NewReader(req.HTML)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "wkhtmltopdf failed"
		}
		return nil, export.NewError(export.KindInternal, message, err)
	}
	return stdout.Bytes(), nil
}

func wkhtmltopdfArgs(opts PDFOptions) []string {
	args := []string{"--quiet", "--encoding", "utf-8"}
	if opts.PageSize != "" {
		args = append(args, "--page-size", strings.ToUpper(opts.PageSize))
	}
	if opts.Landscape != nil && *opts.Landscape {
		args = append(args, "--orientation", "Landscape")
	}
	margins := []struct{ flag, value string }{
		{"--margin-top", opts.MarginTop},
		{"--margin-bottom", opts.MarginBottom},
		{"--margin-left", opts.MarginLeft},
		{"--margin-right", opts.MarginRight},
	}
	for _, margin := range margins {
		if margin.value != "" {
			args = append(args, margin.flag, margin.value)
		}
	}
	if opts.BlockExternalAssets {
		args = append(args, "--disable-local-file-access", "--disable-external-links")
	}
	return args
}

type limitedBuffer struct {
	buf     bytes.Buffer
	maxSize int64
}

func newLimitedBuffer(maxSize int64) *limitedBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxHTMLBytes
	}
	return &limitedBuffer{maxSize: maxSize}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.maxSize > 0 && int64(b.buf.Len()+len(p)) > b.maxSize {
		return 0, export.NewError(export.KindValidation, "pdf renderer max html bytes exceeded", nil)
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}
