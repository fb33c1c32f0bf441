package command

import (
	"context"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-school-export/export"
)

// Exporter runs a single export.
type Exporter interface {
	Export(ctx context.Context, req export.ExportRequest) (export.ExportResult, error)
}

// GenerateExportHandler runs export generation.
type GenerateExportHandler struct {
	Service Exporter
}

func NewGenerateExportHandler(svc Exporter) *GenerateExportHandler {
	return &GenerateExportHandler{Service: svc}
}

func (h *GenerateExportHandler) Execute(ctx context.Context, msg GenerateExport) error {
	if h == nil || h.Service == nil {
		return errors.New("export service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	result, err := h.Service.Export(ctx, msg.Request)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	if res := gcmd.ResultFromContext[export.ExportResult](ctx); res != nil {
		res.Store(result)
	}
	return nil
}
