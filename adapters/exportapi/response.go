package exportapi

import "github.com/goliatone/go-school-export/export"

// Response provides a minimal response interface for transport adapters.
type Response interface {
	SetHeader(name, value string)
	WriteHeader(status int)
	Write(data []byte) (int, error)
	WriteJSON(status int, payload any) error
}

// DatasetsResponse lists what can be exported.
type DatasetsResponse struct {
	Datasets []string        `json:"datasets"`
	Formats  []export.Format `json:"formats"`
}

// HistoryResponse lists tracked export runs.
type HistoryResponse struct {
	Records []export.ExportRecord `json:"records"`
}

// ErrorResponse describes JSON error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
