package admin

import (
	"context"
	"net/http"

	"taxipark/pkg/forms"
)

// Row is one record as shown in a changelist, keyed by field name.
type Row struct {
	ID     int64
	Label  string
	Values map[string]string
}

// Field is one input of the generic change form.
type Field struct {
	Name    string
	Label   string
	Kind    string
	Value   string
	Checked bool
	Choices []Choice
	Errors  []string
}

type Choice struct {
	Value    string
	Label    string
	Selected bool
}

const (
	kindText        = "text"
	kindEmail       = "email"
	kindSelect      = "select"
	kindMultiSelect = "multiselect"
	kindCheckbox    = "checkbox"
	kindReadonly    = "readonly"
)

// modelAdmin adapts one record type to the admin views.
type modelAdmin interface {
	fields() []string
	rows(ctx context.Context) ([]Row, error)
	label(ctx context.Context, id int64) (string, error)
	changeForm(ctx context.Context, id int64) ([]Field, error)
	// change binds req onto the record and saves it. When validation fails it
	// returns the fields with their errors and saved=false.
	change(ctx context.Context, id int64, req *http.Request) (fields []Field, saved bool, err error)
	delete(ctx context.Context, id int64) error
}

func textField(name, label, value string, errs forms.FieldErrors) Field {
	return Field{Name: name, Label: label, Kind: kindText, Value: value, Errors: errs.Get(name)}
}

func checkboxField(name, label string, checked bool, errs forms.FieldErrors) Field {
	return Field{Name: name, Label: label, Kind: kindCheckbox, Checked: checked, Errors: errs.Get(name)}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
