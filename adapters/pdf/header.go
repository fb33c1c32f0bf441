package exportpdf

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// LogoSource resolves the header logo. Fallback is tried when Primary
// cannot be read or decoded.
type LogoSource struct {
	Primary  string
	Fallback string
	// FS, when set, is used instead of the OS filesystem.
	FS fs.FS
}

// InstitutionHeader is the identity block drawn at the top of page 1.
type InstitutionHeader struct {
	ForeignLabel     string
	LocalLabel       string
	Logo             LogoSource
	PlaceholderLabel string
}

const (
	headerTop       = 18.0
	headerLogoSize  = 60.0
	headerLabelSize = 12.0
	headerRuleY     = 86.0
)

func (s LogoSource) read(path string) ([]byte, error) {
	if s.FS != nil {
		return fs.ReadFile(s.FS, strings.TrimPrefix(path, "/"))
	}
	return os.ReadFile(path)
}

func imageType(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "jpg", "jpeg":
		return "JPG"
	case "png":
		return "PNG"
	case "gif":
		return "GIF"
	default:
		return ""
	}
}

// drawHeader draws labels, the logo (or its placeholder) and the separator.
// It never fails the document on asset problems.
func (r DocumentRenderer) drawHeader(doc *canvas) {
	metrics := doc.metrics
	third := metrics.UsableWidth() / 3
	labelY := headerTop + (headerLogoSize-headerLabelSize*1.4)/2

	doc.setFont("B", headerLabelSize)
	doc.pdf.SetXY(metrics.Margins.Left, labelY)
	doc.pdf.CellFormat(third, headerLabelSize*1.4, doc.text(r.Header.ForeignLabel), "", 0, "L", false, 0, "")
	doc.pdf.SetXY(metrics.Width-metrics.Margins.Right-third, labelY)
	doc.pdf.CellFormat(third, headerLabelSize*1.4, doc.text(r.Header.LocalLabel), "", 0, "R", false, 0, "")

	x := (metrics.Width - headerLogoSize) / 2
	if !r.drawLogo(doc, x, headerTop) {
		r.drawLogoPlaceholder(doc, x, headerTop)
	}

	doc.pdf.SetDrawColor(60, 60, 60)
	doc.pdf.SetLineWidth(1)
	doc.pdf.Line(metrics.Margins.Left, headerRuleY, metrics.Width-metrics.Margins.Right, headerRuleY)
}

func (r DocumentRenderer) drawLogo(doc *canvas, x, y float64) bool {
	logo := r.Header.Logo
	for _, path := range []string{logo.Primary, logo.Fallback} {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		kind := imageType(path)
		if kind == "" {
			r.logger().Errorf("pdf header logo %s: unsupported image type", path)
			continue
		}
		data, err := logo.read(path)
		if err != nil {
			r.logger().Errorf("pdf header logo %s: %v", path, err)
			continue
		}

		options := fpdf.ImageOptions{ImageType: kind, ReadDpi: false}
		name := "logo:" + path
		info := doc.pdf.RegisterImageOptionsReader(name, options, bytes.NewReader(data))
		if doc.pdf.Err() || info == nil {
			r.logger().Errorf("pdf header logo %s: %v", path, doc.pdf.Error())
			doc.pdf.ClearError()
			continue
		}
		doc.pdf.ImageOptions(name, x, y, headerLogoSize, headerLogoSize, false, options, 0, "")
		return true
	}
	return false
}

func (r DocumentRenderer) drawLogoPlaceholder(doc *canvas, x, y float64) {
	label := r.Header.PlaceholderLabel
	if label == "" {
		label = "LOGO"
	}
	doc.pdf.SetDrawColor(120, 120, 120)
	doc.pdf.SetLineWidth(1)
	doc.pdf.Rect(x, y, headerLogoSize, headerLogoSize, "D")
	doc.setFont("", 8)
	doc.pdf.SetXY(x, y+(headerLogoSize-10)/2)
	doc.pdf.CellFormat(headerLogoSize, 10, doc.text(label), "", 0, "C", false, 0, "")
}
