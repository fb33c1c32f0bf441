package school

import (
	"github.com/goliatone/go-i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/goliatone/go-school-export/export"
)

// Message key prefixes in the translation store.
const (
	titleKey  = "title."
	headerKey = "header."
	labelKey  = "label."
)

// Catalog resolves the display strings of one locale through the shared
// translator.
type Catalog struct {
	Tag        language.Tag
	Direction  export.Direction
	translator *i18n.SimpleTranslator
}

// Title returns the dataset title, or the dataset name when untranslated.
func (c Catalog) Title(dataset string) string {
	return c.lookup(titleKey, dataset)
}

// Header returns the column header for key.
func (c Catalog) Header(key string) string {
	return c.lookup(headerKey, key)
}

// Label translates an enum value; unknown values pass through unchanged.
func (c Catalog) Label(value string) string {
	if value == "" {
		return ""
	}
	return c.lookup(labelKey, value)
}

func (c Catalog) lookup(prefix, key string) string {
	if c.translator == nil {
		return key
	}
	text, err := c.translator.Translate(c.Tag.String(), prefix+key)
	if err != nil {
		return key
	}
	return text
}

// localeStrings is the source of one locale's messages.
type localeStrings struct {
	titles  map[string]string
	headers map[string]string
	labels  map[string]string
}

func (s localeStrings) catalog(tag language.Tag) *i18n.TranslationCatalog {
	code := tag.String()
	out := &i18n.TranslationCatalog{
		Locale:   i18n.Locale{Code: code, Name: display.Self.Name(tag)},
		Messages: make(map[string]i18n.Message, len(s.titles)+len(s.headers)+len(s.labels)),
	}
	for prefix, entries := range map[string]map[string]string{
		titleKey:  s.titles,
		headerKey: s.headers,
		labelKey:  s.labels,
	} {
		for key, text := range entries {
			id := prefix + key
			message := i18n.Message{MessageMetadata: i18n.MessageMetadata{ID: id, Locale: code}}
			message.SetContent(text)
			out.Messages[id] = message
		}
	}
	return out
}

var persianStrings = localeStrings{
	titles: map[string]string{
		DatasetPrograms:   "برنامه‌های فوق برنامه",
		DatasetAdvisors:   "مربیان",
		DatasetStudents:   "دانش‌آموزان",
		DatasetSessions:   "جلسات",
		DatasetAttendance: "حضور و غیاب",
	},
	headers: map[string]string{
		"id":            "شناسه",
		"name":          "نام",
		"category":      "دسته",
		"advisor":       "مربی",
		"status":        "وضعیت",
		"capacity":      "ظرفیت",
		"start_date":    "تاریخ شروع",
		"end_date":      "تاریخ پایان",
		"location":      "مکان",
		"phone":         "تلفن",
		"email":         "ایمیل",
		"program_count": "تعداد برنامه‌ها",
		"national_code": "کد ملی",
		"gender":        "جنسیت",
		"grade":         "پایه",
		"class_name":    "کلاس",
		"birth_date":    "تاریخ تولد",
		"program":       "برنامه",
		"title":         "عنوان",
		"held_on":       "تاریخ",
		"start_time":    "ساعت شروع",
		"duration":      "مدت (دقیقه)",
		"session_date":  "تاریخ جلسه",
		"session":       "جلسه",
		"student":       "دانش‌آموز",
		"note":          "توضیحات",
	},
	labels: map[string]string{
		CategorySports:    "ورزشی",
		CategoryArt:       "هنری",
		CategoryScience:   "علمی",
		CategoryCulture:   "فرهنگی",
		CategoryReligion:  "مذهبی",
		StatusPlanned:     "برنامه‌ریزی شده",
		StatusActive:      "فعال",
		StatusFinished:    "پایان یافته",
		StatusCanceled:    "لغو شده",
		AttendancePresent: "حاضر",
		AttendanceAbsent:  "غایب",
		AttendanceLate:    "با تأخیر",
		AttendanceExcused: "غیبت موجه",
		GenderMale:        "پسر",
		GenderFemale:      "دختر",
	},
}

var englishStrings = localeStrings{
	titles: map[string]string{
		DatasetPrograms:   "Extracurricular Programs",
		DatasetAdvisors:   "Advisors",
		DatasetStudents:   "Students",
		DatasetSessions:   "Sessions",
		DatasetAttendance: "Attendance",
	},
	headers: map[string]string{
		"id":            "ID",
		"name":          "Name",
		"category":      "Category",
		"advisor":       "Advisor",
		"status":        "Status",
		"capacity":      "Capacity",
		"start_date":    "Start Date",
		"end_date":      "End Date",
		"location":      "Location",
		"phone":         "Phone",
		"email":         "Email",
		"program_count": "Programs",
		"national_code": "National Code",
		"gender":        "Gender",
		"grade":         "Grade",
		"class_name":    "Class",
		"birth_date":    "Birth Date",
		"program":       "Program",
		"title":         "Title",
		"held_on":       "Date",
		"start_time":    "Start Time",
		"duration":      "Duration (min)",
		"session_date":  "Session Date",
		"session":       "Session",
		"student":       "Student",
		"note":          "Note",
	},
	labels: map[string]string{
		CategorySports:    "Sports",
		CategoryArt:       "Art",
		CategoryScience:   "Science",
		CategoryCulture:   "Culture",
		CategoryReligion:  "Religion",
		StatusPlanned:     "Planned",
		StatusActive:      "Active",
		StatusFinished:    "Finished",
		StatusCanceled:    "Canceled",
		AttendancePresent: "Present",
		AttendanceAbsent:  "Absent",
		AttendanceLate:    "Late",
		AttendanceExcused: "Excused",
		GenderMale:        "Male",
		GenderFemale:      "Female",
	},
}

// translator serves every catalog. Persian is the default locale, matching
// CatalogFor.
var translator = newTranslator()

func newTranslator() *i18n.SimpleTranslator {
	store := i18n.NewStaticStore(i18n.Translations{
		language.Persian.String(): persianStrings.catalog(language.Persian),
		language.English.String(): englishStrings.catalog(language.English),
	})
	t, err := i18n.NewSimpleTranslator(store, i18n.WithTranslatorDefaultLocale(language.Persian.String()))
	if err != nil {
		panic(err)
	}
	return t
}

var (
	persian = Catalog{Tag: language.Persian, Direction: export.DirectionRTL, translator: translator}
	english = Catalog{Tag: language.English, Direction: export.DirectionLTR, translator: translator}
)

// catalogs is ordered for the matcher; the first entry is the default.
var catalogs = []Catalog{persian, english}

var matcher = language.NewMatcher([]language.Tag{persian.Tag, english.Tag})

// CatalogFor picks the closest catalog for a locale or Accept-Language
// value. Empty or unknown locales get Persian.
func CatalogFor(locale string) Catalog {
	if locale == "" {
		return catalogs[0]
	}
	_, index := language.MatchStrings(matcher, locale)
	return catalogs[index]
}
