package school

import (
	"context"
	"strconv"
	"time"

	"github.com/goliatone/go-school-export/export"
)

// Dataset names.
const (
	DatasetPrograms   = "programs"
	DatasetAdvisors   = "advisors"
	DatasetStudents   = "students"
	DatasetSessions   = "sessions"
	DatasetAttendance = "attendance"
)

type columnSpec struct {
	key   string
	width float64
}

type fetchFunc func(ctx context.Context, repo *Repository, params Params, catalog Catalog) ([]export.Row, error)

type dataset struct {
	name    string
	columns []columnSpec
	fetch   fetchFunc
}

var datasets = []dataset{
	{
		name: DatasetPrograms,
		columns: []columnSpec{
			{"id", 0.5}, {"name", 2}, {"category", 1}, {"advisor", 1.5}, {"status", 1},
			{"capacity", 0.7}, {"start_date", 1}, {"end_date", 1}, {"location", 1.3},
		},
		fetch: fetchPrograms,
	},
	{
		name: DatasetAdvisors,
		columns: []columnSpec{
			{"id", 0.5}, {"name", 2}, {"phone", 1.2}, {"email", 2}, {"program_count", 1},
		},
		fetch: fetchAdvisors,
	},
	{
		name: DatasetStudents,
		columns: []columnSpec{
			{"id", 0.5}, {"name", 2}, {"national_code", 1.2}, {"gender", 0.8},
			{"grade", 0.6}, {"class_name", 0.8}, {"birth_date", 1},
		},
		fetch: fetchStudents,
	},
	{
		name: DatasetSessions,
		columns: []columnSpec{
			{"id", 0.5}, {"program", 2}, {"title", 2}, {"held_on", 1},
			{"start_time", 0.8}, {"duration", 0.8}, {"location", 1.2},
		},
		fetch: fetchSessions,
	},
	{
		name: DatasetAttendance,
		columns: []columnSpec{
			{"session_date", 1}, {"program", 1.8}, {"session", 1.8}, {"student", 2},
			{"status", 1}, {"note", 2},
		},
		fetch: fetchAttendance,
	},
}

// Register adds every school dataset to the registry.
func Register(registry *export.DatasetRegistry, repo *Repository) error {
	if registry == nil {
		return export.NewError(export.KindInternal, "dataset registry is required", nil)
	}
	for _, ds := range datasets {
		if err := registry.Register(ds.name, Source(ds.name, repo)); err != nil {
			return err
		}
	}
	return nil
}

// Source returns the dataset source for one school dataset.
func Source(name string, repo *Repository) export.DatasetSource {
	return export.DatasetSourceFunc(func(ctx context.Context, req export.DatasetRequest) (export.Dataset, error) {
		ds, ok := lookupDataset(name)
		if !ok {
			return export.Dataset{}, export.NewError(export.KindNotFound, "unknown school dataset: "+name, nil)
		}
		return ds.build(ctx, repo, req)
	})
}

func lookupDataset(name string) (dataset, bool) {
	for _, ds := range datasets {
		if ds.name == name {
			return ds, true
		}
	}
	return dataset{}, false
}

func (ds dataset) build(ctx context.Context, repo *Repository, req export.DatasetRequest) (export.Dataset, error) {
	params, err := ParseParams(req.Params)
	if err != nil {
		return export.Dataset{}, err
	}
	catalog := CatalogFor(req.Locale)

	rows, err := ds.fetch(ctx, repo, params, catalog)
	if err != nil {
		if export.KindFromError(err) != export.KindInternal {
			return export.Dataset{}, err
		}
		return export.Dataset{}, export.NewError(export.KindInternal, "school dataset query failed", err)
	}

	columns := make([]export.Column, len(ds.columns))
	for i, spec := range ds.columns {
		columns[i] = export.Column{Header: catalog.Header(spec.key), Key: spec.key, Width: spec.width}
	}
	return export.Dataset{
		Title:     catalog.Title(ds.name),
		Columns:   columns,
		Rows:      rows,
		Direction: catalog.Direction,
	}, nil
}

func fetchPrograms(ctx context.Context, repo *Repository, params Params, catalog Catalog) ([]export.Row, error) {
	programs, err := repo.Programs(ctx, ProgramFilter{Status: params.Status})
	if err != nil {
		return nil, err
	}
	rows := make([]export.Row, 0, len(programs))
	for _, program := range programs {
		advisor := ""
		if program.Advisor != nil {
			advisor = program.Advisor.FullName()
		}
		rows = append(rows, export.Row{
			"id":         program.ID,
			"name":       program.Name,
			"category":   catalog.Label(program.Category),
			"advisor":    advisor,
			"status":     catalog.Label(program.Status),
			"capacity":   program.Capacity,
			"start_date": formatDate(program.StartDate),
			"end_date":   formatDate(program.EndDate),
			"location":   program.Location,
		})
	}
	return rows, nil
}

func fetchAdvisors(ctx context.Context, repo *Repository, _ Params, _ Catalog) ([]export.Row, error) {
	advisors, err := repo.Advisors(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]export.Row, 0, len(advisors))
	for _, advisor := range advisors {
		rows = append(rows, export.Row{
			"id":            advisor.ID,
			"name":          advisor.FullName(),
			"phone":         advisor.Phone,
			"email":         advisor.Email,
			"program_count": advisor.ProgramCount,
		})
	}
	return rows, nil
}

func fetchStudents(ctx context.Context, repo *Repository, params Params, catalog Catalog) ([]export.Row, error) {
	students, err := repo.Students(ctx, StudentFilter{ProgramID: params.ProgramID})
	if err != nil {
		return nil, err
	}
	rows := make([]export.Row, 0, len(students))
	for _, student := range students {
		rows = append(rows, export.Row{
			"id":            student.ID,
			"name":          student.FullName(),
			"national_code": student.NationalCode,
			"gender":        catalog.Label(student.Gender),
			"grade":         student.Grade,
			"class_name":    student.ClassName,
			"birth_date":    formatDate(student.BirthDate),
		})
	}
	return rows, nil
}

func fetchSessions(ctx context.Context, repo *Repository, params Params, _ Catalog) ([]export.Row, error) {
	sessions, err := repo.Sessions(ctx, params.sessionFilter())
	if err != nil {
		return nil, err
	}
	rows := make([]export.Row, 0, len(sessions))
	for _, session := range sessions {
		program := ""
		if session.Program != nil {
			program = session.Program.Name
		}
		duration := ""
		if session.DurationMinutes > 0 {
			duration = strconv.Itoa(session.DurationMinutes)
		}
		rows = append(rows, export.Row{
			"id":         session.ID,
			"program":    program,
			"title":      session.Title,
			"held_on":    formatDate(session.HeldOn),
			"start_time": session.StartTime,
			"duration":   duration,
			"location":   session.Location,
		})
	}
	return rows, nil
}

func fetchAttendance(ctx context.Context, repo *Repository, params Params, catalog Catalog) ([]export.Row, error) {
	entries, err := repo.Attendance(ctx, params.sessionFilter())
	if err != nil {
		return nil, err
	}
	rows := make([]export.Row, 0, len(entries))
	for _, entry := range entries {
		row := export.Row{
			"status": catalog.Label(entry.Status),
			"note":   entry.Note,
		}
		if session := entry.Session; session != nil {
			row["session_date"] = formatDate(session.HeldOn)
			row["session"] = session.Title
			if session.Program != nil {
				row["program"] = session.Program.Name
			}
		}
		if entry.Student != nil {
			row["student"] = entry.Student.FullName()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}
