package export

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode"
)

// DefaultFilenameTemplate names downloads after the dataset and time of export.
const DefaultFilenameTemplate = "{{.Dataset}}_{{.Timestamp}}"

type filenameData struct {
	Dataset   string
	Title     string
	Format    string
	Timestamp string
	Date      string
}

func renderFilename(pattern string, dataset, title string, format Format, now time.Time) (string, error) {
	if pattern == "" {
		pattern = DefaultFilenameTemplate
	}

	data := filenameData{
		Dataset:   dataset,
		Title:     title,
		Format:    string(format),
		Timestamp: now.UTC().Format("20060102T150405Z"),
		Date:      now.UTC().Format("20060102"),
	}

	tmpl, err := template.New("filename").Parse(pattern)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	result := sanitizeFilename(buf.String())
	if result == "" {
		return "", fmt.Errorf("empty filename")
	}

	ext := Extension(format)
	if !strings.HasSuffix(strings.ToLower(result), "."+ext) {
		result = result + "." + ext
	}
	return result, nil
}

// sanitizeFilename keeps letters from any script so localized titles survive.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		case unicode.IsSpace(r):
			return '_'
		default:
			return -1
		}
	}, name)
}
