// Package forms decodes and validates submitted HTML forms.
//
// Decoding and struct-tag validation go through gin's binding engine; the
// validator is configured to report fields by their form name so errors can
// be rendered next to the matching input. Cross-field rules live in each
// form's Clean method.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldErrors keys errors that do not belong to a single input.
const NonFieldErrors = "__all__"

// FieldErrors maps a form field name to its error messages.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e FieldErrors) Get(field string) []string {
	return e[field]
}

func (e FieldErrors) Any() bool {
	for _, msgs := range e {
		if len(msgs) > 0 {
			return true
		}
	}
	return false
}

// Form is a bindable form with cross-field validation.
type Form interface {
	Clean(errs FieldErrors)
}

// Bind decodes req into form, then runs struct validation and Clean.
func Bind(req *http.Request, form Form) FieldErrors {
	errs := FieldErrors{}
	b := binding.Default(req.Method, contentType(req))
	if err := b.Bind(req, form); err != nil {
		translate(err, errs)
	}
	form.Clean(errs)
	return errs
}

// Validate runs struct validation and Clean on an already populated form.
func Validate(form Form) FieldErrors {
	errs := FieldErrors{}
	if err := binding.Validator.ValidateStruct(form); err != nil {
		translate(err, errs)
	}
	form.Clean(errs)
	return errs
}

func contentType(req *http.Request) string {
	ct := req.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

func translate(err error, errs FieldErrors) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(NonFieldErrors, "Invalid form submission.")
		return
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "license":
		if s, ok := fe.Value().(string); ok {
			if msgs := LicenseNumberErrors(s); len(msgs) > 0 {
				return msgs[0]
			}
		}
		return "Enter a valid license number."
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return "Enter a valid value."
	}
}

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("license", func(fl validator.FieldLevel) bool {
		return len(LicenseNumberErrors(fl.Field().String())) == 0
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
}
