// Package validation checks contact and account input before it reaches the
// store. Struct rules live in `validate` tags on the models; this package
// registers the Brazilian document tags ("cpf", "cep") on a shared
// go-playground validator and turns its errors into common.ErrValidation.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
			return IsCPF(fl.Field().String())
		})
		_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
			return IsCEP(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// Struct validates s against its `validate` tags. Failures wrap
// common.ErrValidation and name every offending field.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(msgs, "; "))
}

// Email reports an error unless addr looks like an email address.
func Email(addr string) error {
	if err := get().Var(addr, "required,email"); err != nil {
		return fmt.Errorf("%w: invalid email %q", common.ErrValidation, addr)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "cpf":
		return "invalid CPF"
	case "cep":
		return "invalid CEP, it must have 8 digits"
	case "min":
		return fmt.Sprintf("%s must have at least %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have exactly %s characters", field, fe.Param())
	case "gte", "lte":
		return field + " is out of range"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
