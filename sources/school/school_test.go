package school

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-school-export/export"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newSeededRepo(t *testing.T) *Repository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo := NewRepository(db)
	ctx := context.Background()
	if err := repo.CreateSchema(ctx); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	if err := Seed(ctx, repo); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func fetch(t *testing.T, repo *Repository, name, locale string, params map[string]string) export.Dataset {
	t.Helper()
	ds, err := Source(name, repo).Fetch(context.Background(), export.DatasetRequest{Name: name, Locale: locale, Params: params})
	if err != nil {
		t.Fatalf("fetch %s: %v", name, err)
	}
	if err := (export.Job{Title: ds.Title, Columns: ds.Columns, Rows: ds.Rows, Direction: ds.Direction}).Validate(); err != nil {
		t.Fatalf("dataset %s is not a valid job: %v", name, err)
	}
	return ds
}

func TestRegister_AllDatasets(t *testing.T) {
	registry := export.NewDatasetRegistry()
	if err := Register(registry, NewRepository(nil)); err != nil {
		t.Fatalf("register: %v", err)
	}
	got := strings.Join(registry.Names(), ",")
	if got != "advisors,attendance,programs,sessions,students" {
		t.Fatalf("unexpected datasets %s", got)
	}
	if err := Register(registry, NewRepository(nil)); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected duplicate registration to fail, got %v", err)
	}
}

func TestPrograms_PersianDefault(t *testing.T) {
	repo := newSeededRepo(t)
	ds := fetch(t, repo, DatasetPrograms, "", nil)

	if ds.Direction != export.DirectionRTL {
		t.Fatalf("expected rtl, got %s", ds.Direction)
	}
	if ds.Title != persianStrings.titles[DatasetPrograms] {
		t.Fatalf("unexpected title %q", ds.Title)
	}
	if ds.Columns[1].Header != "نام" {
		t.Fatalf("expected persian header, got %q", ds.Columns[1].Header)
	}
	if len(ds.Rows) != 3 {
		t.Fatalf("expected 3 programs, got %d", len(ds.Rows))
	}
	first := ds.Rows[0]
	if first["name"] != "تیم فوتبال" || first["category"] != "ورزشی" || first["status"] != "فعال" {
		t.Fatalf("unexpected first row %v", first)
	}
	if first["advisor"] != "مریم احمدی" || first["start_date"] != "2024-09-23" {
		t.Fatalf("unexpected advisor or date %v", first)
	}
	if ds.Rows[2]["end_date"] != "" {
		t.Fatalf("expected empty end date, got %v", ds.Rows[2]["end_date"])
	}
}

func TestPrograms_StatusFilterEnglish(t *testing.T) {
	repo := newSeededRepo(t)
	ds := fetch(t, repo, DatasetPrograms, "en-US", map[string]string{"status": "planned"})

	if ds.Direction != export.DirectionLTR || ds.Title != "Extracurricular Programs" {
		t.Fatalf("expected english dataset, got %q %s", ds.Title, ds.Direction)
	}
	if len(ds.Rows) != 1 || ds.Rows[0]["status"] != "Planned" || ds.Rows[0]["category"] != "Art" {
		t.Fatalf("unexpected rows %v", ds.Rows)
	}
}

func TestAdvisors_ProgramCount(t *testing.T) {
	repo := newSeededRepo(t)
	ds := fetch(t, repo, DatasetAdvisors, "en", nil)

	counts := map[string]any{}
	for _, row := range ds.Rows {
		counts[row["name"].(string)] = row["program_count"]
	}
	if counts["مریم احمدی"] != 2 || counts["Reza Karimi"] != 1 {
		t.Fatalf("unexpected program counts %v", counts)
	}
}

func TestStudents_ProgramFilter(t *testing.T) {
	repo := newSeededRepo(t)

	all := fetch(t, repo, DatasetStudents, "fa", nil)
	if len(all.Rows) != 4 {
		t.Fatalf("expected 4 students, got %d", len(all.Rows))
	}

	football := fetch(t, repo, DatasetStudents, "fa", map[string]string{"program_id": "1"})
	if len(football.Rows) != 2 {
		t.Fatalf("expected 2 enrolled students, got %d", len(football.Rows))
	}
	if football.Rows[0]["name"] != "علی رضایی" || football.Rows[0]["gender"] != "پسر" {
		t.Fatalf("unexpected first student %v", football.Rows[0])
	}
}

func TestSessions_DateRange(t *testing.T) {
	repo := newSeededRepo(t)

	ds := fetch(t, repo, DatasetSessions, "en", map[string]string{"from": "2024-10-06", "to": "2024-10-12"})
	if len(ds.Rows) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(ds.Rows))
	}
	if ds.Rows[0]["held_on"] != "2024-10-08" || ds.Rows[1]["held_on"] != "2024-10-12" {
		t.Fatalf("unexpected session order %v", ds.Rows)
	}
	if ds.Rows[1]["duration"] != "120" {
		t.Fatalf("expected duration 120, got %v", ds.Rows[1]["duration"])
	}

	byProgram := fetch(t, repo, DatasetSessions, "en", map[string]string{"program_id": "2"})
	if len(byProgram.Rows) != 1 || byProgram.Rows[0]["program"] != "Robotics Club" {
		t.Fatalf("unexpected program sessions %v", byProgram.Rows)
	}
}

func TestAttendance_Filters(t *testing.T) {
	repo := newSeededRepo(t)

	byProgram := fetch(t, repo, DatasetAttendance, "fa", map[string]string{"program_id": "1"})
	if len(byProgram.Rows) != 4 {
		t.Fatalf("expected 4 attendance rows, got %d", len(byProgram.Rows))
	}
	first := byProgram.Rows[0]
	if first["session_date"] != "2024-10-05" || first["program"] != "تیم فوتبال" {
		t.Fatalf("unexpected first attendance row %v", first)
	}

	bySession := fetch(t, repo, DatasetAttendance, "en", map[string]string{"session_id": "3"})
	if len(bySession.Rows) != 2 {
		t.Fatalf("expected 2 attendance rows, got %d", len(bySession.Rows))
	}
	statuses := bySession.Rows[0]["status"].(string) + "," + bySession.Rows[1]["status"].(string)
	if statuses != "Present,Excused" {
		t.Fatalf("unexpected statuses %s", statuses)
	}
}

func TestFetch_InvalidParams(t *testing.T) {
	repo := newSeededRepo(t)

	tests := []struct {
		name    string
		dataset string
		params  map[string]string
	}{
		{name: "bad program id", dataset: DatasetStudents, params: map[string]string{"program_id": "abc"}},
		{name: "negative session", dataset: DatasetAttendance, params: map[string]string{"session_id": "-3"}},
		{name: "unknown status", dataset: DatasetPrograms, params: map[string]string{"status": "archived"}},
		{name: "bad date", dataset: DatasetSessions, params: map[string]string{"from": "2024/10/01"}},
		{name: "reversed range", dataset: DatasetSessions, params: map[string]string{"from": "2024-10-10", "to": "2024-10-01"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Source(tc.dataset, repo).Fetch(context.Background(), export.DatasetRequest{Name: tc.dataset, Params: tc.params})
			if export.KindFromError(err) != export.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestFetch_NoDatabase(t *testing.T) {
	_, err := Source(DatasetPrograms, NewRepository(nil)).Fetch(context.Background(), export.DatasetRequest{Name: DatasetPrograms})
	if export.KindFromError(err) != export.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestCatalogFor(t *testing.T) {
	tests := []struct {
		locale string
		want   export.Direction
	}{
		{locale: "", want: export.DirectionRTL},
		{locale: "fa", want: export.DirectionRTL},
		{locale: "fa-IR", want: export.DirectionRTL},
		{locale: "en", want: export.DirectionLTR},
		{locale: "en-GB,en;q=0.8", want: export.DirectionLTR},
		{locale: "de", want: export.DirectionRTL},
	}

	for _, tc := range tests {
		t.Run(tc.locale, func(t *testing.T) {
			if got := CatalogFor(tc.locale).Direction; got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCatalog_UnknownLabelPassesThrough(t *testing.T) {
	if got := english.Label("archived"); got != "archived" {
		t.Fatalf("expected raw value, got %q", got)
	}
	if got := english.Label(""); got != "" {
		t.Fatalf("expected empty label, got %q", got)
	}
}

func TestCatalog_Translations(t *testing.T) {
	tests := []struct {
		name   string
		locale string
		got    func(Catalog) string
		want   string
	}{
		{name: "persian title", locale: "fa", got: func(c Catalog) string { return c.Title(DatasetStudents) }, want: "دانش‌آموزان"},
		{name: "english title", locale: "en", got: func(c Catalog) string { return c.Title(DatasetStudents) }, want: "Students"},
		{name: "persian header", locale: "fa-IR", got: func(c Catalog) string { return c.Header("duration") }, want: "مدت (دقیقه)"},
		{name: "english header", locale: "en-US", got: func(c Catalog) string { return c.Header("duration") }, want: "Duration (min)"},
		{name: "persian label", locale: "", got: func(c Catalog) string { return c.Label(StatusActive) }, want: "فعال"},
		{name: "english label", locale: "en", got: func(c Catalog) string { return c.Label(AttendanceExcused) }, want: "Excused"},
		{name: "unknown header", locale: "en", got: func(c Catalog) string { return c.Header("nickname") }, want: "nickname"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.got(CatalogFor(tc.locale)); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCatalog_LocalesCoverSameKeys(t *testing.T) {
	sections := []struct {
		name    string
		persian map[string]string
		english map[string]string
	}{
		{name: "titles", persian: persianStrings.titles, english: englishStrings.titles},
		{name: "headers", persian: persianStrings.headers, english: englishStrings.headers},
		{name: "labels", persian: persianStrings.labels, english: englishStrings.labels},
	}

	for _, section := range sections {
		if len(section.persian) != len(section.english) {
			t.Fatalf("%s: %d persian entries, %d english", section.name, len(section.persian), len(section.english))
		}
		for key := range section.persian {
			if _, ok := section.english[key]; !ok {
				t.Fatalf("%s: %q has no english text", section.name, key)
			}
		}
	}
}
