// Package exporttemplate renders export jobs as standalone HTML documents.
//
// The default template is a pongo2 (Django syntax) page with the institution
// header, the title and one table, laid out for landscape A4 printing. The
// output feeds exportpdf.HTMLRenderer or can be served as an html export.
package exporttemplate
