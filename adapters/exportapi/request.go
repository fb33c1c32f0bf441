package exportapi

import (
	"context"
	"net/url"
	"strings"

	"github.com/goliatone/go-school-export/export"
)

// Request provides minimal request access for transport adapters.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Header(name string) string
	Query(name string) string
	QueryValues() url.Values
}

// RequestDecoder builds an export request for a dataset route.
type RequestDecoder interface {
	Decode(req Request, dataset string) (export.ExportRequest, error)
}

// QueryRequestDecoder reads format, locale and dir from the query string.
// Every other query key is passed to the dataset as a param.
type QueryRequestDecoder struct{}

// Decode parses query params into an export request.
func (QueryRequestDecoder) Decode(req Request, dataset string) (export.ExportRequest, error) {
	if req == nil {
		return export.ExportRequest{}, export.NewError(export.KindInternal, "request is nil", nil)
	}
	dataset, err := url.PathUnescape(strings.TrimSpace(dataset))
	if err != nil {
		return export.ExportRequest{}, export.NewError(export.KindValidation, "invalid dataset name", err)
	}

	format := export.NormalizeFormat(export.Format(req.Query("format")))
	if format == "" {
		format = export.FormatXLSX
	}

	direction, err := export.ParseDirection(req.Query("dir"), "")
	if err != nil {
		return export.ExportRequest{}, err
	}

	locale := strings.TrimSpace(req.Query("locale"))
	if locale == "" {
		locale = strings.TrimSpace(req.Header("Accept-Language"))
	}

	return export.ExportRequest{
		Dataset:   dataset,
		Format:    format,
		Locale:    locale,
		Direction: direction,
		Params:    datasetParams(req.QueryValues()),
	}, nil
}

func datasetParams(values url.Values) map[string]string {
	params := make(map[string]string)
	for key, vals := range values {
		key = strings.TrimSpace(key)
		if key == "" || isReservedKey(key) || len(vals) == 0 {
			continue
		}
		params[key] = strings.TrimSpace(vals[0])
	}
	if len(params) == 0 {
		return nil
	}
	return params
}

func isReservedKey(key string) bool {
	switch strings.ToLower(key) {
	case "format", "locale", "dir":
		return true
	default:
		return false
	}
}
