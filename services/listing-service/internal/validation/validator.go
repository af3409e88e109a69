package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// Errors maps a field's wire name to a readable message.
type Errors struct {
	Fields map[string]string
}

func (e *Errors) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, e.Fields[name])
	}

	return strings.Join(parts, "; ")
}

// Validator validates payloads and translates failures to English messages.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	_ = validate.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return IsFullName(fl.Field().String())
	})
	_ = validate.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return IsLooseEmail(fl.Field().String())
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, trans)

	registerMessage(validate, trans, "phone", "{0} must be an E.164 phone number such as +15551234567")
	registerMessage(validate, trans, "fullname", "{0} must contain at least a first and a last name")
	registerMessage(validate, trans, "looseemail", "{0} must be a valid email address")
	registerMessage(validate, trans, "mongodb", "{0} must be a valid id")

	return &Validator{validate: validate, trans: trans}
}

// Struct validates s and returns *Errors describing every failed field, or nil.
func (v *Validator) Struct(s any) error {
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
		out.Fields[fe.Field()] = fe.Translate(v.trans)
	}

	return out
}

// IsPhone reports whether s is an E.164 phone number.
func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// IsFullName reports whether s has at least two whitespace-separated words.
func IsFullName(s string) bool {
	return len(strings.Fields(s)) >= 2
}

func IsLooseEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func registerMessage(validate *validator.Validate, trans ut.Translator, tag, message string) {
	_ = validate.RegisterTranslation(
		tag,
		trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
}
