package forms

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin/binding"
)

// SearchForm is a single optional text field narrowing a list view.
type SearchForm interface {
	// Field is the query parameter name, e.g. "model".
	Field() string
	// Value is the cleaned search text; empty means no filtering.
	Value() string
	CleanedData() map[string]string
}

type ManufacturerSearchForm struct {
	Name string `form:"name"`
}

func (f *ManufacturerSearchForm) Field() string { return "name" }
func (f *ManufacturerSearchForm) Value() string { return strings.TrimSpace(f.Name) }
func (f *ManufacturerSearchForm) CleanedData() map[string]string {
	return map[string]string{f.Field(): f.Value()}
}

type CarSearchForm struct {
	Model string `form:"model"`
}

func (f *CarSearchForm) Field() string { return "model" }
func (f *CarSearchForm) Value() string { return strings.TrimSpace(f.Model) }
func (f *CarSearchForm) CleanedData() map[string]string {
	return map[string]string{f.Field(): f.Value()}
}

type DriverSearchForm struct {
	Username string `form:"username"`
}

func (f *DriverSearchForm) Field() string { return "username" }
func (f *DriverSearchForm) Value() string { return strings.TrimSpace(f.Username) }
func (f *DriverSearchForm) CleanedData() map[string]string {
	return map[string]string{f.Field(): f.Value()}
}

// BindSearch fills form from the query string. The search forms hold only
// strings, so an error means a form type gin cannot decode into; form is
// returned either way and callers fall back to its cleaned value.
func BindSearch(req *http.Request, form SearchForm) (SearchForm, error) {
	if err := binding.Query.Bind(req, form); err != nil {
		return form, fmt.Errorf("failed to bind %s search: %w", form.Field(), err)
	}
	return form, nil
}
