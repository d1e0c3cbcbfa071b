// Package validatex wraps go-playground/validator with English messages and
// the registration rules shared by the portal and the API.
//
// Error keys are the json tag names of the offending fields, so a map
// returned here can be sent over the wire or matched against form fields
// without translation.
package validatex

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	reMobile = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	reOTP    = regexp.MustCompile(`^[0-9]{4}$`)
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("validatex: translator not found")

// FieldErrors maps a json field name to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation error"
	}
	b, err := json.Marshal(map[string]string(fe))
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator with English translations and the custom
// mobile, password, experience and otp rules registered.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}
	if err := registerCustom(validate, enTrans); err != nil {
		return nil, err
	}

	return &Validator{validate: validate, translator: enTrans}, nil
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
)

// Default returns a process wide Validator. It panics if the built in
// translations fail to register, which only happens on a programming error.
func Default() *Validator {
	defaultOnce.Do(func() {
		v, err := New()
		if err != nil {
			panic(err)
		}
		defaultV = v
	})
	return defaultV
}

// Struct validates data and returns FieldErrors on failure.
func (v *Validator) Struct(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = humanize(fe.Field(), fe.Translate(v.translator))
	}
	return out
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// humanize swaps the snake_case field name at the start of msg for a label,
// "first_name is a required field" -> "First name is a required field".
func humanize(field, msg string) string {
	label := strings.ReplaceAll(field, "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	if rest, ok := strings.CutPrefix(msg, field); ok {
		return label + rest
	}
	return msg
}

func registerCustom(validate *validator.Validate, trans ut.Translator) error {
	rules := []struct {
		tag string
		fn  validator.Func
		msg string
	}{
		{"mobile", matchString(reMobile), "{0} must be 10 to 15 digits, optionally starting with +"},
		{"password", minRunes(MinPasswordLength), "{0} must be at least 8 characters"},
		{"experience", nonNegativeNumber, "{0} must be a non-negative number"},
		{"otp", matchString(reOTP), "{0} must be exactly 4 digits"},
	}

	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.fn); err != nil {
			return err
		}

		msg := r.msg
		tag := r.tag
		err := validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error { return ut.Add(tag, msg, false) },
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					return fe.Error()
				}
				return t
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && re.MatchString(s)
	}
}

func minRunes(n int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && len([]rune(s)) >= n
	}
}

func nonNegativeNumber(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
