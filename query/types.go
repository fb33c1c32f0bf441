package query

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-school-export/export"
)

// ExportHistory requests tracked export runs.
type ExportHistory struct {
	Filter export.ProgressFilter
}

func (ExportHistory) Type() string { return "export:history" }

func (msg ExportHistory) Validate() error {
	if msg.Filter.Limit < 0 {
		return errors.New("limit must not be negative", errors.CategoryValidation).
			WithTextCode("LIMIT_INVALID")
	}
	return nil
}

// ListDatasets requests the exportable dataset names.
type ListDatasets struct{}

func (ListDatasets) Type() string { return "export:datasets" }

func (ListDatasets) Validate() error { return nil }
