package school

import (
	"context"
	"time"

	"github.com/goliatone/go-school-export/export"
	"github.com/uptrace/bun"
)

// Repository reads school entities for exports. The database handle is
// passed in by the caller; the package keeps no global connection.
type Repository struct {
	db *bun.DB
}

// NewRepository creates a repository bound to db.
func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Models lists every table the repository reads, in dependency order.
func Models() []any {
	return []any{
		(*Advisor)(nil),
		(*Program)(nil),
		(*Student)(nil),
		(*Enrollment)(nil),
		(*Session)(nil),
		(*Attendance)(nil),
	}
}

// CreateSchema creates missing tables.
func (r *Repository) CreateSchema(ctx context.Context) error {
	if err := r.ready(); err != nil {
		return err
	}
	for _, model := range Models() {
		if _, err := r.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Insert stores a model, filling its primary key.
func (r *Repository) Insert(ctx context.Context, model any) error {
	if err := r.ready(); err != nil {
		return err
	}
	_, err := r.db.NewInsert().Model(model).Exec(ctx)
	return err
}

// ProgramFilter narrows the programs listing.
type ProgramFilter struct {
	Status string
}

// Programs returns programs with their advisor, ordered by start date.
func (r *Repository) Programs(ctx context.Context, filter ProgramFilter) ([]Program, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	programs := make([]Program, 0)
	query := r.db.NewSelect().Model(&programs).Relation("Advisor")
	if filter.Status != "" {
		query = query.Where("p.status = ?", filter.Status)
	}
	err := query.Order("p.start_date ASC", "p.id ASC").Scan(ctx)
	return programs, err
}

// Advisors returns advisors with the number of programs they supervise.
func (r *Repository) Advisors(ctx context.Context) ([]Advisor, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	advisors := make([]Advisor, 0)
	err := r.db.NewSelect().
		Model(&advisors).
		ColumnExpr("a.*").
		ColumnExpr("(SELECT COUNT(*) FROM programs AS p WHERE p.advisor_id = a.id) AS program_count").
		Order("a.last_name ASC", "a.id ASC").
		Scan(ctx)
	return advisors, err
}

// StudentFilter narrows the students listing.
type StudentFilter struct {
	ProgramID int64
}

// Students returns students, optionally only those enrolled in a program.
func (r *Repository) Students(ctx context.Context, filter StudentFilter) ([]Student, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	students := make([]Student, 0)
	query := r.db.NewSelect().Model(&students)
	if filter.ProgramID > 0 {
		query = query.Where("s.id IN (?)",
			r.db.NewSelect().Model((*Enrollment)(nil)).Column("e.student_id").Where("e.program_id = ?", filter.ProgramID))
	}
	err := query.Order("s.last_name ASC", "s.first_name ASC", "s.id ASC").Scan(ctx)
	return students, err
}

// SessionFilter narrows sessions and attendance listings.
// From and To are inclusive days; zero values leave the range open.
type SessionFilter struct {
	ProgramID int64
	SessionID int64
	From      time.Time
	To        time.Time
}

// Sessions returns sessions with their program, ordered by date.
func (r *Repository) Sessions(ctx context.Context, filter SessionFilter) ([]Session, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	sessions := make([]Session, 0)
	query := r.db.NewSelect().Model(&sessions).Relation("Program")
	if filter.ProgramID > 0 {
		query = query.Where("se.program_id = ?", filter.ProgramID)
	}
	if filter.SessionID > 0 {
		query = query.Where("se.id = ?", filter.SessionID)
	}
	query = applyDayRange(query, "se.held_on", filter)
	err := query.Order("se.held_on ASC", "se.id ASC").Scan(ctx)
	return sessions, err
}

// Attendance returns attendance entries with session, program and student.
func (r *Repository) Attendance(ctx context.Context, filter SessionFilter) ([]Attendance, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	entries := make([]Attendance, 0)
	query := r.db.NewSelect().Model(&entries).
		Relation("Session").
		Relation("Session.Program").
		Relation("Student")
	if filter.ProgramID > 0 {
		query = query.Where("session.program_id = ?", filter.ProgramID)
	}
	if filter.SessionID > 0 {
		query = query.Where("at.session_id = ?", filter.SessionID)
	}
	query = applyDayRange(query, "session.held_on", filter)
	err := query.Order("session.held_on ASC", "at.session_id ASC", "at.id ASC").Scan(ctx)
	return entries, err
}

func applyDayRange(query *bun.SelectQuery, column string, filter SessionFilter) *bun.SelectQuery {
	if !filter.From.IsZero() {
		query = query.Where("? >= ?", bun.Ident(column), startOfDay(filter.From))
	}
	if !filter.To.IsZero() {
		query = query.Where("? < ?", bun.Ident(column), startOfDay(filter.To).AddDate(0, 0, 1))
	}
	return query
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *Repository) ready() error {
	if r == nil || r.db == nil {
		return export.NewError(export.KindInternal, "school repository database not configured", nil)
	}
	return nil
}
