package trackerbun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-school-export/export"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tracker stores the export audit trail in a Bun-backed database.
// Only metadata is written; document bytes never reach the table.
type Tracker struct {
	DB          *bun.DB
	Now         func() time.Time
	IDGenerator func() string
}

var _ export.Tracker = (*Tracker)(nil)

// NewTracker creates a Bun-backed tracker.
func NewTracker(db *bun.DB) *Tracker {
	return &Tracker{DB: db, Now: time.Now, IDGenerator: uuid.NewString}
}

// CreateSchema creates the audit table when it does not exist.
func (t *Tracker) CreateSchema(ctx context.Context) error {
	if err := t.ready(); err != nil {
		return err
	}
	_, err := t.DB.NewCreateTable().Model((*recordModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Start inserts a running record.
func (t *Tracker) Start(ctx context.Context, record export.ExportRecord) (string, error) {
	if err := t.ready(); err != nil {
		return "", err
	}
	if record.ID == "" {
		record.ID = t.nextID()
	}
	if record.State == "" {
		record.State = export.StateRunning
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = t.now()
	}

	model := modelFromRecord(record)
	if _, err := t.DB.NewInsert().Model(&model).Exec(ctx); err != nil {
		return "", err
	}
	return record.ID, nil
}

// Complete stores the output stats and marks the record completed.
func (t *Tracker) Complete(ctx context.Context, id string, stats export.RenderStats) error {
	if err := t.ready(); err != nil {
		return err
	}
	if id == "" {
		return export.NewError(export.KindValidation, "export ID is required", nil)
	}

	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("state = ?", export.StateCompleted).
		Set("row_count = ?", stats.Rows).
		Set("byte_count = ?", stats.Bytes).
		Set("page_count = ?", stats.Pages).
		Set("completed_at = COALESCE(completed_at, ?)", t.now()).
		Where("id = ?", id)
	return t.exec(ctx, query, id)
}

// Fail marks the record failed and keeps the error message.
func (t *Tracker) Fail(ctx context.Context, id string, cause error) error {
	if err := t.ready(); err != nil {
		return err
	}
	if id == "" {
		return export.NewError(export.KindValidation, "export ID is required", nil)
	}

	message := ""
	if cause != nil {
		message = cause.Error()
	}
	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("state = ?", export.StateFailed).
		Set("error = ?", message).
		Set("completed_at = COALESCE(completed_at, ?)", t.now()).
		Where("id = ?", id)
	return t.exec(ctx, query, id)
}

// Status returns a record by ID.
func (t *Tracker) Status(ctx context.Context, id string) (export.ExportRecord, error) {
	if err := t.ready(); err != nil {
		return export.ExportRecord{}, err
	}
	if id == "" {
		return export.ExportRecord{}, export.NewError(export.KindValidation, "export ID is required", nil)
	}

	model := new(recordModel)
	err := t.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return export.ExportRecord{}, export.NewError(export.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
		}
		return export.ExportRecord{}, err
	}
	return model.toRecord(), nil
}

// List returns records matching a filter, newest first.
func (t *Tracker) List(ctx context.Context, filter export.ProgressFilter) ([]export.ExportRecord, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}

	models := make([]recordModel, 0)
	query := t.DB.NewSelect().Model(&models)
	if filter.Dataset != "" {
		query = query.Where("dataset = ?", filter.Dataset)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since.UTC())
	}
	query = query.Order("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	records := make([]export.ExportRecord, 0, len(models))
	for _, model := range models {
		records = append(records, model.toRecord())
	}
	return records, nil
}

// Prune deletes records created before the cutoff and reports how many went.
func (t *Tracker) Prune(ctx context.Context, before time.Time) (int64, error) {
	if err := t.ready(); err != nil {
		return 0, err
	}
	res, err := t.DB.NewDelete().Model((*recordModel)(nil)).Where("created_at < ?", before.UTC()).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *Tracker) exec(ctx context.Context, query *bun.UpdateQuery, id string) error {
	res, err := query.Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return export.NewError(export.KindNotFound, fmt.Sprintf("export %q not found", id), nil)
	}
	return nil
}

func (t *Tracker) ready() error {
	if t == nil || t.DB == nil {
		return export.NewError(export.KindNotImpl, "tracker database not configured", nil)
	}
	return nil
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}

func (t *Tracker) nextID() string {
	if t.IDGenerator != nil {
		return t.IDGenerator()
	}
	return uuid.NewString()
}

type recordModel struct {
	bun.BaseModel `bun:"table:export_records,alias:er"`

	ID          string    `bun:",pk"`
	Dataset     string    `bun:",notnull"`
	Format      string    `bun:",notnull"`
	Locale      string    `bun:"locale"`
	State       string    `bun:",notnull"`
	Rows        int64     `bun:"row_count"`
	Bytes       int64     `bun:"byte_count"`
	Pages       int       `bun:"page_count"`
	Error       string    `bun:"error"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	CompletedAt time.Time `bun:"completed_at,nullzero"`
}

func modelFromRecord(record export.ExportRecord) recordModel {
	return recordModel{
		ID:          record.ID,
		Dataset:     record.Dataset,
		Format:      string(record.Format),
		Locale:      record.Locale,
		State:       string(record.State),
		Rows:        record.Rows,
		Bytes:       record.Bytes,
		Pages:       record.Pages,
		Error:       record.Error,
		CreatedAt:   record.CreatedAt.UTC(),
		CompletedAt: record.CompletedAt,
	}
}

func (m recordModel) toRecord() export.ExportRecord {
	return export.ExportRecord{
		ID:          m.ID,
		Dataset:     m.Dataset,
		Format:      export.Format(m.Format),
		Locale:      m.Locale,
		State:       export.ExportState(m.State),
		Rows:        m.Rows,
		Bytes:       m.Bytes,
		Pages:       m.Pages,
		Error:       m.Error,
		CreatedAt:   m.CreatedAt,
		CompletedAt: m.CompletedAt,
	}
}
