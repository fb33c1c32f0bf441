package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service runs exports end to end: validate, fetch, render, track.
type Service interface {
	Export(ctx context.Context, req ExportRequest) (ExportResult, error)
	Datasets() []string
	Formats() []Format
	History(ctx context.Context, filter ProgressFilter) ([]ExportRecord, error)
}

// ServiceConfig supplies dependencies for Service.
type ServiceConfig struct {
	Datasets         *DatasetRegistry
	Renderers        *RendererRegistry
	Tracker          Tracker
	Logger           Logger
	Now              func() time.Time
	IDGenerator      func() string
	FilenameTemplate string
	DefaultLocale    string
}

type service struct {
	datasets         *DatasetRegistry
	renderers        *RendererRegistry
	tracker          Tracker
	logger           Logger
	now              func() time.Time
	idGenerator      func() string
	filenameTemplate string
	defaultLocale    string
}

// NewService creates a Service with the provided configuration.
func NewService(cfg ServiceConfig) Service {
	datasets := cfg.Datasets
	if datasets == nil {
		datasets = NewDatasetRegistry()
	}
	renderers := cfg.Renderers
	if renderers == nil {
		renderers = NewDefaultRendererRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}

	return &service{
		datasets:         datasets,
		renderers:        renderers,
		tracker:          cfg.Tracker,
		logger:           logger,
		now:              nowFn,
		idGenerator:      idGen,
		filenameTemplate: cfg.FilenameTemplate,
		defaultLocale:    cfg.DefaultLocale,
	}
}

func (s *service) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req = NormalizeRequest(req)
	if req.Locale == "" {
		req.Locale = s.defaultLocale
	}
	if err := ValidateRequest(req); err != nil {
		return ExportResult{}, AsGoError(err)
	}

	// unknown formats must fail before any data is fetched
	renderer, ok := s.renderers.Resolve(req.Format)
	if !ok {
		return ExportResult{}, AsGoError(NewError(KindValidation, fmt.Sprintf("unsupported format %q", req.Format), nil))
	}
	source, ok := s.datasets.Resolve(req.Dataset)
	if !ok {
		return ExportResult{}, AsGoError(NewError(KindNotFound, fmt.Sprintf("dataset %q not found", req.Dataset), nil))
	}

	dataset, err := source.Fetch(ctx, DatasetRequest{
		Name:   req.Dataset,
		Locale: req.Locale,
		Params: req.Params,
	})
	if err != nil {
		s.logger.Errorf("export fetch failed dataset=%s: %v", req.Dataset, err)
		return ExportResult{}, AsGoError(err)
	}

	job := Job{
		Title:     dataset.Title,
		Columns:   dataset.Columns,
		Rows:      dataset.Rows,
		Direction: dataset.Direction,
	}
	if req.Direction != "" {
		job.Direction = req.Direction
	}
	if job.Direction == "" {
		job.Direction = DirectionLTR
	}
	if job.Title == "" {
		job.Title = req.Dataset
	}

	id := s.idGenerator()
	if s.tracker != nil {
		trackedID, err := s.tracker.Start(ctx, ExportRecord{
			ID:        id,
			Dataset:   req.Dataset,
			Format:    req.Format,
			Locale:    req.Locale,
			State:     StateRunning,
			CreatedAt: s.now(),
		})
		if err != nil {
			return ExportResult{}, AsGoError(err)
		}
		id = trackedID
	}

	s.logger.Infof("export started id=%s dataset=%s format=%s rows=%d", id, req.Dataset, req.Format, len(job.Rows))

	data, stats, err := RenderBytes(ctx, renderer, job)
	if err != nil {
		s.fail(ctx, id, err)
		return ExportResult{}, AsGoError(err)
	}
	if stats.Rows == 0 {
		stats.Rows = int64(len(job.Rows))
	}

	filename, err := renderFilename(s.filenameTemplate, req.Dataset, job.Title, req.Format, s.now())
	if err != nil {
		err = NewError(KindInternal, "filename template failed", err)
		s.fail(ctx, id, err)
		return ExportResult{}, AsGoError(err)
	}

	if s.tracker != nil {
		if err := s.tracker.Complete(ctx, id, stats); err != nil {
			s.logger.Errorf("export tracker complete failed id=%s: %v", id, err)
		}
	}
	s.logger.Infof("export completed id=%s rows=%d bytes=%d pages=%d", id, stats.Rows, stats.Bytes, stats.Pages)

	return ExportResult{
		ID:          id,
		Dataset:     req.Dataset,
		Format:      req.Format,
		Filename:    filename,
		ContentType: ContentType(req.Format),
		Rows:        stats.Rows,
		Bytes:       stats.Bytes,
		Pages:       stats.Pages,
		Data:        data,
	}, nil
}

func (s *service) Datasets() []string {
	return s.datasets.Names()
}

func (s *service) Formats() []Format {
	return s.renderers.Formats()
}

func (s *service) History(ctx context.Context, filter ProgressFilter) ([]ExportRecord, error) {
	if s.tracker == nil {
		return nil, AsGoError(NewError(KindNotFound, "export history is not available", nil))
	}
	records, err := s.tracker.List(ctx, filter)
	if err != nil {
		return nil, AsGoError(err)
	}
	return records, nil
}

func (s *service) fail(ctx context.Context, id string, cause error) {
	s.logger.Errorf("export failed id=%s: %v", id, cause)
	if s.tracker == nil {
		return
	}
	if err := s.tracker.Fail(ctx, id, cause); err != nil {
		s.logger.Errorf("export tracker fail failed id=%s: %v", id, err)
	}
}
