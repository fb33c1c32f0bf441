package export

import "strings"

// NormalizeFormat coerces format values into known aliases.
func NormalizeFormat(format Format) Format {
	normalized := strings.ToLower(strings.TrimSpace(string(format)))
	switch normalized {
	case "excel", "xls", "spreadsheet":
		return FormatXLSX
	case "htm":
		return FormatHTML
	default:
		return Format(normalized)
	}
}

// ContentType returns the MIME type served for a format.
func ContentType(format Format) string {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension for a format, without the dot.
func Extension(format Format) string {
	if format == "" {
		return "bin"
	}
	return string(format)
}
