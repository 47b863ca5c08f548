package config

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
			return name
		})
		validateInst = v
	})
	return validateInst
}

// Validate checks c and returns an INVALID_INPUT error naming the first
// offending key.
func (c *Config) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		ve := ves[0]
		return errs.New(errs.ErrCodeInvalidInput, "config: %s failed validation for tag '%s' (got %v)", ve.Field(), ve.Tag(), ve.Value())
	}
	return errs.Wrap(errs.ErrCodeInvalidInput, err, "config")
}
