package errs

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// AppValidator represents the validator used for model validation. It only
// covers the request shape, the directory rules (email format, country code,
// age bounds) live in the person domain so conflicts keep precedence over
// shape errors.
type AppValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewAppValidator creates and sets up a validator and a translator.
func NewAppValidator() (*AppValidator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	//english translator
	translator, _ := ut.New(en.New(), en.New()).GetTranslator("en")

	if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
		return nil, fmt.Errorf("registering default translator: %w", err)
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &AppValidator{
		validate:   v,
		translator: translator,
	}, nil
}

// Check validates a struct and returns the failed fields when validation
// fails.
func (av *AppValidator) Check(val any) (map[string]string, bool) {
	err := av.validate.Struct(val)

	if err != nil {
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			return nil, false
		}

		fields := make(map[string]string, len(vErrs))
		for _, vErr := range vErrs {
			fields[vErr.Field()] = vErr.Translate(av.translator)
		}
		return fields, false
	}

	return nil, true
}
