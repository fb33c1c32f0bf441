package school

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-school-export/export"
)

// DateLayout is the format of date params and rendered dates.
const DateLayout = "2006-01-02"

// Params are the typed dataset filters parsed from request params.
type Params struct {
	ProgramID int64  `validate:"gte=0"`
	SessionID int64  `validate:"gte=0"`
	Status    string `validate:"omitempty,oneof=planned active finished canceled"`
	From      time.Time
	To        time.Time
}

var paramsValidator = validator.New()

// ParseParams reads the known filter params. Unknown keys are ignored.
func ParseParams(raw map[string]string) (Params, error) {
	var params Params
	var err error

	if params.ProgramID, err = parseID(raw, "program_id"); err != nil {
		return Params{}, err
	}
	if params.SessionID, err = parseID(raw, "session_id"); err != nil {
		return Params{}, err
	}
	params.Status = strings.ToLower(strings.TrimSpace(raw["status"]))
	if params.From, err = parseDate(raw, "from"); err != nil {
		return Params{}, err
	}
	if params.To, err = parseDate(raw, "to"); err != nil {
		return Params{}, err
	}

	if err := paramsValidator.Struct(params); err != nil {
		return Params{}, export.NewError(export.KindValidation, "invalid dataset params", err)
	}
	if !params.From.IsZero() && !params.To.IsZero() && params.To.Before(params.From) {
		return Params{}, export.NewError(export.KindValidation, "param to must not be before from", nil)
	}
	return params, nil
}

func (p Params) sessionFilter() SessionFilter {
	return SessionFilter{ProgramID: p.ProgramID, SessionID: p.SessionID, From: p.From, To: p.To}
}

func parseID(raw map[string]string, key string) (int64, error) {
	value := strings.TrimSpace(raw[key])
	if value == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, export.NewError(export.KindValidation, fmt.Sprintf("param %s must be a positive integer", key), err)
	}
	return id, nil
}

func parseDate(raw map[string]string, key string) (time.Time, error) {
	value := strings.TrimSpace(raw[key])
	if value == "" {
		return time.Time{}, nil
	}
	day, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, export.NewError(export.KindValidation, fmt.Sprintf("param %s must be a YYYY-MM-DD date", key), err)
	}
	return day, nil
}
