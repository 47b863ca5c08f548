package style

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	hexColorPattern   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorPattern  = regexp.MustCompile(`^(?i:rgba?|hsla?)\(\s*[-+0-9.%,\s/a-zA-Z]*\)$`)
	namedColorPattern = regexp.MustCompile(`^[a-zA-Z]{3,30}$`)
)

// validatorInstance configures and returns the shared validator for settings.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("fontfamily", func(fl validator.FieldLevel) bool {
			return FontFamily(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("instrument", func(fl validator.FieldLevel) bool {
			return Instrument(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("paper", func(fl validator.FieldLevel) bool {
			return Paper(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("csscolor", func(fl validator.FieldLevel) bool {
			return IsColor(fl.Field().String())
		})

		validateInst = v
	})
	return validateInst
}

// IsColor reports whether s looks like a CSS color: a hex triplet or sextet
// (optionally with alpha), an rgb()/rgba()/hsl()/hsla() function, or a
// color keyword. Keywords are checked for shape only; the host renderer
// decides what they mean.
func IsColor(s string) bool {
	s = strings.TrimSpace(s)
	return hexColorPattern.MatchString(s) ||
		funcColorPattern.MatchString(s) ||
		namedColorPattern.MatchString(s)
}

// Validate checks every field of s against its domain.
// The returned error carries errs.ErrCodeInvalidValue and names the first
// offending field.
func (s Settings) Validate() error {
	return convertValidationError(validatorInstance().Struct(s))
}

// validateField checks a single field of s against its domain.
func validateField(s Settings, f Field) error {
	name, ok := goFieldNames[f]
	if !ok {
		return errs.New(errs.ErrCodeInvalidField, "unknown field %q", f)
	}
	sf, _ := reflect.TypeOf(s).FieldByName(name)
	value := reflect.ValueOf(s).FieldByName(name).Interface()

	err := validatorInstance().Var(value, sf.Tag.Get("validate"))
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		return errs.New(errs.ErrCodeInvalidValue, "%s failed validation for tag '%s' (got %v)", f, ves[0].Tag(), value)
	}
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidValue, err, "%s", f)
	}
	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		ve := ves[0]
		return errs.New(errs.ErrCodeInvalidValue, "%s failed validation for tag '%s' (got %v)", ve.Field(), ve.Tag(), ve.Value())
	}

	return errs.Wrap(errs.ErrCodeInvalidValue, err, "settings")
}
