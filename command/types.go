package command

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-school-export/export"
)

// GenerateExport renders a dataset into a document.
type GenerateExport struct {
	Request export.ExportRequest
	Result  *export.ExportResult
}

func (GenerateExport) Type() string { return "export:generate" }

func (msg GenerateExport) Validate() error {
	if msg.Request.Dataset == "" {
		return errors.New("dataset is required", errors.CategoryValidation).
			WithTextCode("DATASET_REQUIRED")
	}
	if msg.Request.Format == "" {
		return errors.New("format is required", errors.CategoryValidation).
			WithTextCode("FORMAT_REQUIRED")
	}
	return nil
}

// RunBatch renders a list of exports and stores the documents.
type RunBatch struct {
	From   string
	Result *BatchReport
}

func (RunBatch) Type() string { return "export:batch" }

func (RunBatch) Validate() error { return nil }
