package admin

import (
	"context"
	"net/http"

	"taxipark/pkg/forms"
	"taxipark/pkg/models"
	"taxipark/service"
	"taxipark/storage"
)

type driverAdmin struct {
	svc service.DriverService
}

func (a *driverAdmin) fields() []string {
	return []string{
		"username", "email", "first_name", "last_name", "license_number",
		"is_staff", "is_superuser", "is_active",
	}
}

func (a *driverAdmin) rows(ctx context.Context) ([]Row, error) {
	list, err := a.svc.All(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(list))
	for _, d := range list {
		rows = append(rows, Row{
			ID:    d.ID,
			Label: d.String(),
			Values: map[string]string{
				"username":       d.Username,
				"email":          d.Email,
				"first_name":     d.FirstName,
				"last_name":      d.LastName,
				"license_number": d.LicenseNumber,
				"is_staff":       yesNo(d.IsStaff),
				"is_superuser":   yesNo(d.IsSuperuser),
				"is_active":      yesNo(d.IsActive),
			},
		})
	}
	return rows, nil
}

func (a *driverAdmin) label(ctx context.Context, id int64) (string, error) {
	d, err := a.svc.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

func (a *driverAdmin) changeForm(ctx context.Context, id int64) ([]Field, error) {
	d, err := a.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return driverFields(forms.DriverChangeFormFrom(d), d, forms.FieldErrors{}), nil
}

func (a *driverAdmin) change(ctx context.Context, id int64, req *http.Request) ([]Field, bool, error) {
	d, err := a.svc.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	form := &forms.DriverChangeForm{}
	errs := forms.Bind(req, form)
	if !errs.Any() {
		form.Apply(d)
		_, err := a.svc.Update(ctx, d)
		switch {
		case err == nil:
			return nil, true, nil
		case storage.ConflictOn(err, "license_number"):
			errs.Add("license_number", "Driver with this License number already exists.")
		case storage.ConflictOn(err, "username"):
			errs.Add("username", "A user with that username already exists.")
		default:
			return nil, false, err
		}
	}
	return driverFields(form, d, errs), false, nil
}

func (a *driverAdmin) delete(ctx context.Context, id int64) error {
	return a.svc.Delete(ctx, id)
}

func driverFields(form *forms.DriverChangeForm, d *models.Driver, errs forms.FieldErrors) []Field {
	email := textField("email", "Email address", form.Email, errs)
	email.Kind = kindEmail

	lastLogin := "-"
	if d.LastLogin != nil {
		lastLogin = d.LastLogin.Format("2006-01-02 15:04")
	}

	return []Field{
		textField("username", "Username", form.Username, errs),
		textField("first_name", "First name", form.FirstName, errs),
		textField("last_name", "Last name", form.LastName, errs),
		email,
		textField("license_number", "License number", form.LicenseNumber, errs),
		checkboxField("is_active", "Active", form.IsActive, errs),
		checkboxField("is_staff", "Staff status", form.IsStaff, errs),
		checkboxField("is_superuser", "Superuser status", form.IsSuperuser, errs),
		{Name: "date_joined", Label: "Date joined", Kind: kindReadonly, Value: d.DateJoined.Format("2006-01-02 15:04")},
		{Name: "last_login", Label: "Last login", Kind: kindReadonly, Value: lastLogin},
	}
}
