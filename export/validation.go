package export

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(jsonTagName)
	})
	return validate
}

// NormalizeRequest trims and lower-cases request fields.
func NormalizeRequest(req ExportRequest) ExportRequest {
	req.Dataset = strings.TrimSpace(req.Dataset)
	req.Format = NormalizeFormat(req.Format)
	req.Locale = strings.TrimSpace(req.Locale)
	req.Direction = Direction(strings.ToLower(strings.TrimSpace(string(req.Direction))))
	return req
}

// ValidateRequest checks the request shape before any rendering work starts.
func ValidateRequest(req ExportRequest) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		msg := fmt.Sprintf("%s is required", first.Field())
		if first.Tag() != "required" {
			msg = fmt.Sprintf("%s has invalid value %q", first.Field(), fmt.Sprint(first.Value()))
		}
		return NewError(KindValidation, msg, err)
	}
	return NewError(KindValidation, "invalid export request", err)
}

func jsonTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
