package query

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-school-export/export"
)

// ExportHistoryHandler returns export history.
type ExportHistoryHandler struct {
	Service export.Service
}

func NewExportHistoryHandler(svc export.Service) *ExportHistoryHandler {
	return &ExportHistoryHandler{Service: svc}
}

func (h *ExportHistoryHandler) Query(ctx context.Context, msg ExportHistory) ([]export.ExportRecord, error) {
	if h == nil || h.Service == nil {
		return nil, errors.New("export service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return h.Service.History(ctx, msg.Filter)
}

// ListDatasetsHandler returns the registered dataset names.
type ListDatasetsHandler struct {
	Service export.Service
}

func NewListDatasetsHandler(svc export.Service) *ListDatasetsHandler {
	return &ListDatasetsHandler{Service: svc}
}

func (h *ListDatasetsHandler) Query(ctx context.Context, msg ListDatasets) ([]string, error) {
	_ = ctx
	if h == nil || h.Service == nil {
		return nil, errors.New("export service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	return h.Service.Datasets(), nil
}
