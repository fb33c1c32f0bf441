package school

import (
	"context"
	"time"
)

// Seed inserts a small demo data set: two advisors, three programs, four
// students, their enrollments, sessions and attendance.
func Seed(ctx context.Context, repo *Repository) error {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	advisors := []*Advisor{
		{FirstName: "مریم", LastName: "احمدی", Phone: "09120000001", Email: "m.ahmadi@school.example"},
		{FirstName: "Reza", LastName: "Karimi", Phone: "09120000002", Email: "r.karimi@school.example"},
	}
	for _, advisor := range advisors {
		if err := repo.Insert(ctx, advisor); err != nil {
			return err
		}
	}

	programs := []*Program{
		{Name: "تیم فوتبال", Category: CategorySports, Status: StatusActive, AdvisorID: advisors[0].ID,
			Capacity: 20, StartDate: day(2024, 9, 23), EndDate: day(2025, 5, 21), Location: "سالن ورزش"},
		{Name: "Robotics Club", Category: CategoryScience, Status: StatusActive, AdvisorID: advisors[1].ID,
			Capacity: 12, StartDate: day(2024, 10, 1), EndDate: day(2025, 3, 1), Location: "Lab 2"},
		{Name: "کارگاه خوشنویسی", Category: CategoryArt, Status: StatusPlanned, AdvisorID: advisors[0].ID,
			Capacity: 15, StartDate: day(2025, 1, 10), Location: "کلاس ۴"},
	}
	for _, program := range programs {
		if err := repo.Insert(ctx, program); err != nil {
			return err
		}
	}

	students := []*Student{
		{FirstName: "علی", LastName: "رضایی", NationalCode: "0012345678", Gender: GenderMale, Grade: 10, ClassName: "10-A", BirthDate: day(2009, 4, 2)},
		{FirstName: "زهرا", LastName: "محمدی", NationalCode: "0023456789", Gender: GenderFemale, Grade: 11, ClassName: "11-B", BirthDate: day(2008, 11, 15)},
		{FirstName: "Sara", LastName: "Bahrami", NationalCode: "0034567890", Gender: GenderFemale, Grade: 10, ClassName: "10-B", BirthDate: day(2009, 1, 30)},
		{FirstName: "حسین", LastName: "نوری", NationalCode: "0045678901", Gender: GenderMale, Grade: 12, ClassName: "12-A", BirthDate: day(2007, 7, 7)},
	}
	for _, student := range students {
		if err := repo.Insert(ctx, student); err != nil {
			return err
		}
	}

	enrollments := []*Enrollment{
		{StudentID: students[0].ID, ProgramID: programs[0].ID, EnrolledAt: day(2024, 9, 20)},
		{StudentID: students[3].ID, ProgramID: programs[0].ID, EnrolledAt: day(2024, 9, 21)},
		{StudentID: students[1].ID, ProgramID: programs[1].ID, EnrolledAt: day(2024, 9, 28)},
		{StudentID: students[2].ID, ProgramID: programs[1].ID, EnrolledAt: day(2024, 9, 28)},
	}
	for _, enrollment := range enrollments {
		if err := repo.Insert(ctx, enrollment); err != nil {
			return err
		}
	}

	sessions := []*Session{
		{ProgramID: programs[0].ID, Title: "تمرین پاس", HeldOn: day(2024, 10, 5), StartTime: "14:00", DurationMinutes: 90, Location: "سالن ورزش"},
		{ProgramID: programs[0].ID, Title: "بازی دوستانه", HeldOn: day(2024, 10, 12), StartTime: "14:00", DurationMinutes: 120, Location: "زمین چمن"},
		{ProgramID: programs[1].ID, Title: "Sensors 101", HeldOn: day(2024, 10, 8), StartTime: "15:30", DurationMinutes: 60, Location: "Lab 2"},
	}
	for _, session := range sessions {
		if err := repo.Insert(ctx, session); err != nil {
			return err
		}
	}

	attendance := []*Attendance{
		{SessionID: sessions[0].ID, StudentID: students[0].ID, Status: AttendancePresent},
		{SessionID: sessions[0].ID, StudentID: students[3].ID, Status: AttendanceLate, Note: "ده دقیقه تأخیر"},
		{SessionID: sessions[1].ID, StudentID: students[0].ID, Status: AttendanceAbsent},
		{SessionID: sessions[1].ID, StudentID: students[3].ID, Status: AttendancePresent},
		{SessionID: sessions[2].ID, StudentID: students[1].ID, Status: AttendancePresent},
		{SessionID: sessions[2].ID, StudentID: students[2].ID, Status: AttendanceExcused, Note: "medical"},
	}
	for _, entry := range attendance {
		if err := repo.Insert(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}
