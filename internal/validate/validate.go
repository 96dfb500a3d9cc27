// Package validate wraps go-playground/validator with the rules PrepPal
// structs rely on.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Default returns the shared validator, initialising it on first use.
func Default() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON names.
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		_ = instance.RegisterValidation("notblank", validators.NotBlank)
	})
	return instance
}

// FieldError describes one failed rule.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// Errors collects every failed rule of one validation.
type Errors struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *Errors) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed: ")
	for i, fe := range e.Fields {
		if i > 0 {
			sb.WriteString("; ")
		}
		if fe.Param != "" {
			fmt.Fprintf(&sb, "%s must satisfy %s=%s", fe.Field, fe.Tag, fe.Param)
		} else {
			fmt.Fprintf(&sb, "%s must satisfy %s", fe.Field, fe.Tag)
		}
	}
	return sb.String()
}

// Struct validates s and returns *Errors when any rule fails.
func Struct(s any) error {
	err := Default().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Errors{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Namespace(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}
