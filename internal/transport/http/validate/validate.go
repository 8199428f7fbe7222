package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

const maxBodyBytes = 1 << 20

var (
	v       = newValidator()
	idRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// report json names, not Go field names
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return val
}

// DecodeJSON reads a single JSON object into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrValidation("invalid json body")
	}
	return nil
}

// Struct runs validator tags on dst and maps failures to a validation error
// with one meta entry per field.
func Struct(dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.ErrValidation("invalid request")
	}
	meta := make(map[string]string, len(ves))
	for _, fe := range ves {
		meta[fe.Field()] = formatFieldError(fe)
	}
	return domain.ErrValidationMeta("invalid request", meta)
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "url":
		return "must be a valid url"
	default:
		return "is invalid"
	}
}

// ID checks a path identifier before it reaches a store.
func ID(name, raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !idRegex.MatchString(s) {
		return "", domain.ErrValidationMeta("invalid "+name, map[string]string{name: "must be 1-64 chars of [A-Za-z0-9_-]"})
	}
	return s, nil
}
