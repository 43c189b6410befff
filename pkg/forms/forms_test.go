package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSearchFormsAreAlwaysValid(t *testing.T) {
	tests := []struct {
		name  string
		form  SearchForm
		query string
		field string
		want  string
	}{
		{"manufacturer", &ManufacturerSearchForm{}, "name=test", "name", "test"},
		{"car", &CarSearchForm{}, "model=test_model", "model", "test_model"},
		{"driver", &DriverSearchForm{}, "username=test", "username", "test"},
		{"empty", &CarSearchForm{}, "model=", "model", ""},
		{"missing", &DriverSearchForm{}, "", "username", ""},
		{"trimmed", &ManufacturerSearchForm{}, "name=%20bmw%20", "name", "bmw"},
		{"wildcards", &ManufacturerSearchForm{}, "name=%25_", "name", "%_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			form, err := BindSearch(req, tt.form)
			require.NoError(t, err)

			assert.Equal(t, tt.field, form.Field())
			assert.Equal(t, tt.want, form.Value())
			assert.Equal(t, map[string]string{tt.field: tt.want}, form.CleanedData())
		})
	}
}

type yearSearchForm struct {
	Year int `form:"year"`
}

func (f *yearSearchForm) Field() string { return "year" }
func (f *yearSearchForm) Value() string { return "" }
func (f *yearSearchForm) CleanedData() map[string]string {
	return map[string]string{f.Field(): f.Value()}
}

func TestBindSearchReportsDecodeErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?year=soon", nil)

	form, err := BindSearch(req, &yearSearchForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year search")
	assert.Equal(t, "", form.Value())
}

func TestManufacturerForm(t *testing.T) {
	form := &ManufacturerForm{}
	errs := Bind(postForm(url.Values{"name": {" Toyota "}, "country": {"Japan"}}), form)
	assert.False(t, errs.Any())
	assert.Equal(t, "Toyota", form.Name)

	form = &ManufacturerForm{}
	errs = Bind(postForm(url.Values{"name": {""}, "country": {strings.Repeat("x", 256)}}), form)
	assert.Equal(t, []string{"This field is required."}, errs.Get("name"))
	assert.Equal(t, []string{"Ensure this value has at most 255 characters."}, errs.Get("country"))
}

func TestCarForm(t *testing.T) {
	form := &CarForm{}
	errs := Bind(postForm(url.Values{
		"model":        {"Camry"},
		"manufacturer": {"3"},
		"drivers":      {"1", "2", "2"},
	}), form)
	require.False(t, errs.Any(), "%v", errs)
	assert.Equal(t, int64(3), form.ManufacturerID)
	assert.Equal(t, []int64{1, 2}, form.DriverIDs)
	assert.True(t, form.Selected(2))
	assert.False(t, form.Selected(5))

	form = &CarForm{}
	errs = Bind(postForm(url.Values{"model": {"Camry"}, "manufacturer": {"abc"}, "drivers": {"x"}}), form)
	assert.True(t, errs.Has("manufacturer"))
	assert.True(t, errs.Has("drivers"))

	form = &CarForm{}
	errs = Bind(postForm(url.Values{"model": {"Camry"}}), form)
	assert.Equal(t, []string{"This field is required."}, errs.Get("manufacturer"))
}

func TestDriverCreationForm(t *testing.T) {
	valid := url.Values{
		"username":       {"driver1"},
		"password1":      {"s3cret-pass"},
		"password2":      {"s3cret-pass"},
		"first_name":     {"John"},
		"last_name":      {"Smith"},
		"license_number": {"ABC12345"},
	}

	form := &DriverCreationForm{}
	errs := Bind(postForm(valid), form)
	require.False(t, errs.Any(), "%v", errs)
	d := form.Driver()
	assert.Equal(t, "driver1 (John Smith)", d.String())
	assert.True(t, d.IsActive)

	tests := []struct {
		name  string
		patch url.Values
		field string
	}{
		{"mismatched passwords", url.Values{"password2": {"other-pass"}}, "password2"},
		{"short password", url.Values{"password1": {"abc"}, "password2": {"abc"}}, "password1"},
		{"numeric password", url.Values{"password1": {"12345678"}, "password2": {"12345678"}}, "password1"},
		{"bad username", url.Values{"username": {"bad name!"}}, "username"},
		{"bad license", url.Values{"license_number": {"abc12345"}}, "license_number"},
		{"missing license", url.Values{"license_number": {""}}, "license_number"},
		{"bad email", url.Values{"email": {"not-an-email"}}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := url.Values{}
			for k, v := range valid {
				values[k] = v
			}
			for k, v := range tt.patch {
				values[k] = v
			}
			errs := Bind(postForm(values), &DriverCreationForm{})
			assert.True(t, errs.Has(tt.field), "expected error on %s, got %v", tt.field, errs)
		})
	}
}

func TestLicenseNumberErrors(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"ABC12345", nil},
		{"ASD1221", []string{"License number should consist of 8 characters."}},
		{"abc12345", []string{"First 3 characters should be uppercase letters."}},
		{"ABC1234X", []string{"Last 5 characters should be digits."}},
		{"a1c1234X", []string{"First 3 characters should be uppercase letters.", "Last 5 characters should be digits."}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LicenseNumberErrors(tt.in))
		})
	}
}

func TestLicenseUpdateFormReportsSpecificMessage(t *testing.T) {
	errs := Validate(&DriverLicenseUpdateForm{LicenseNumber: "ABC1234X"})
	assert.Equal(t, []string{"Last 5 characters should be digits."}, errs.Get("license_number"))

	errs = Validate(&DriverLicenseUpdateForm{LicenseNumber: "XYZ98765"})
	assert.False(t, errs.Any())
}

func TestDriverChangeFormCheckboxes(t *testing.T) {
	form := &DriverChangeForm{}
	errs := Bind(postForm(url.Values{
		"username":  {"admin"},
		"is_staff":  {"true"},
		"is_active": {"true"},
	}), form)
	require.False(t, errs.Any(), "%v", errs)
	assert.True(t, form.IsStaff)
	assert.True(t, form.IsActive)
	assert.False(t, form.IsSuperuser)
}

func TestFieldErrors(t *testing.T) {
	errs := FieldErrors{}
	assert.False(t, errs.Any())

	errs.Add(NonFieldErrors, "boom")
	assert.True(t, errs.Any())
	assert.True(t, errs.Has(NonFieldErrors))
	assert.False(t, errs.Has("name"))
}
