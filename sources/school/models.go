package school

import (
	"time"

	"github.com/uptrace/bun"
)

// Program categories.
const (
	CategorySports   = "sports"
	CategoryArt      = "art"
	CategoryScience  = "science"
	CategoryCulture  = "culture"
	CategoryReligion = "religion"
)

// Program statuses.
const (
	StatusPlanned  = "planned"
	StatusActive   = "active"
	StatusFinished = "finished"
	StatusCanceled = "canceled"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// Genders.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Advisor supervises one or more programs.
type Advisor struct {
	bun.BaseModel `bun:"table:advisors,alias:a"`

	ID        int64     `bun:",pk,autoincrement"`
	FirstName string    `bun:",notnull"`
	LastName  string    `bun:",notnull"`
	Phone     string    `bun:"phone"`
	Email     string    `bun:"email"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`

	ProgramCount int `bun:"program_count,scanonly"`
}

// FullName joins first and last name.
func (a Advisor) FullName() string {
	return joinName(a.FirstName, a.LastName)
}

// Program is an extracurricular program.
type Program struct {
	bun.BaseModel `bun:"table:programs,alias:p"`

	ID        int64     `bun:",pk,autoincrement"`
	Name      string    `bun:",notnull"`
	Category  string    `bun:",notnull"`
	Status    string    `bun:",notnull"`
	AdvisorID int64     `bun:"advisor_id"`
	Advisor   *Advisor  `bun:"rel:belongs-to,join:advisor_id=id"`
	Capacity  int       `bun:"capacity"`
	StartDate time.Time `bun:"start_date,nullzero"`
	EndDate   time.Time `bun:"end_date,nullzero"`
	Location  string    `bun:"location"`
}

// Student is a learner who can enroll in programs.
type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID           int64     `bun:",pk,autoincrement"`
	FirstName    string    `bun:",notnull"`
	LastName     string    `bun:",notnull"`
	NationalCode string    `bun:"national_code"`
	Gender       string    `bun:"gender"`
	Grade        int       `bun:"grade"`
	ClassName    string    `bun:"class_name"`
	BirthDate    time.Time `bun:"birth_date,nullzero"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

// Enrollment links a student to a program.
type Enrollment struct {
	bun.BaseModel `bun:"table:enrollments,alias:e"`

	ID         int64     `bun:",pk,autoincrement"`
	StudentID  int64     `bun:"student_id,notnull"`
	ProgramID  int64     `bun:"program_id,notnull"`
	EnrolledAt time.Time `bun:"enrolled_at,nullzero"`
	Student    *Student  `bun:"rel:belongs-to,join:student_id=id"`
	Program    *Program  `bun:"rel:belongs-to,join:program_id=id"`
}

// Session is one meeting of a program.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:se"`

	ID              int64     `bun:",pk,autoincrement"`
	ProgramID       int64     `bun:"program_id,notnull"`
	Program         *Program  `bun:"rel:belongs-to,join:program_id=id"`
	Title           string    `bun:"title"`
	HeldOn          time.Time `bun:"held_on,notnull"`
	StartTime       string    `bun:"start_time"`
	DurationMinutes int       `bun:"duration_minutes"`
	Location        string    `bun:"location"`
}

// Attendance records one student at one session.
type Attendance struct {
	bun.BaseModel `bun:"table:attendance,alias:at"`

	ID        int64    `bun:",pk,autoincrement"`
	SessionID int64    `bun:"session_id,notnull"`
	StudentID int64    `bun:"student_id,notnull"`
	Status    string   `bun:",notnull"`
	Note      string   `bun:"note"`
	Session   *Session `bun:"rel:belongs-to,join:session_id=id"`
	Student   *Student `bun:"rel:belongs-to,join:student_id=id"`
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
