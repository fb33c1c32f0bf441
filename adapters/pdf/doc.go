// Package exportpdf renders export jobs as paged PDF documents.
//
// DocumentRenderer draws tables natively with go-pdf/fpdf: landscape A4,
// institution header on the first page, column widths shared by weight,
// automatic page breaks, and right-to-left column order when requested.
// HTMLRenderer is the alternative path that prints an HTML rendition of the
// job through a browser engine (Chromium via chromedp, or wkhtmltopdf).
package exportpdf
