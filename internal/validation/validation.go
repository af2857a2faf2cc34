// Package validation checks form payloads before they are sent to the
// platform and renders localized per-field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/vi"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	vi_translations "github.com/go-playground/validator/v10/translations/vi"
)

// Errors maps a form field (its json name) to a message
type Errors struct {
	Fields map[string]string
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsErrors unwraps err into *Errors
func AsErrors(err error) (*Errors, bool) {
	var verr *Errors
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Validator validates structs tagged with `validate`
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
	messages map[string]string
}

// New creates a validator rendering messages in locale ("vi" or "en")
func New(locale string) (*Validator, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, vi.New())

	trans, ok := uni.GetTranslator(locale)
	if !ok {
		return nil, fmt.Errorf("unsupported locale: %q", locale)
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	var err error
	switch locale {
	case "vi":
		err = vi_translations.RegisterDefaultTranslations(v, trans)
	default:
		err = en_translations.RegisterDefaultTranslations(v, trans)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register translations: %w", err)
	}

	return &Validator{
		validate: v,
		trans:    trans,
		messages: fieldMessages[locale],
	}, nil
}

// Struct validates s. It returns *Errors when any field fails.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &Errors{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, seen := out.Fields[field]; seen {
			continue
		}
		if msg, ok := v.messages[field]; ok {
			out.Fields[field] = msg
			continue
		}
		out.Fields[field] = fe.Translate(v.trans)
	}
	return out
}
