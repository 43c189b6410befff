package admin

import (
	"context"
	"net/http"

	"taxipark/pkg/forms"
	"taxipark/service"
	"taxipark/storage"
)

type manufacturerAdmin struct {
	svc service.ManufacturerService
}

func (a *manufacturerAdmin) fields() []string {
	return []string{"name", "country"}
}

func (a *manufacturerAdmin) rows(ctx context.Context) ([]Row, error) {
	list, err := a.svc.All(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(list))
	for _, m := range list {
		rows = append(rows, Row{
			ID:     m.ID,
			Label:  m.String(),
			Values: map[string]string{"name": m.Name, "country": m.Country},
		})
	}
	return rows, nil
}

func (a *manufacturerAdmin) label(ctx context.Context, id int64) (string, error) {
	m, err := a.svc.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

func (a *manufacturerAdmin) changeForm(ctx context.Context, id int64) ([]Field, error) {
	m, err := a.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return manufacturerFields(forms.ManufacturerFormFrom(m), forms.FieldErrors{}), nil
}

func (a *manufacturerAdmin) change(ctx context.Context, id int64, req *http.Request) ([]Field, bool, error) {
	m, err := a.svc.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	form := &forms.ManufacturerForm{}
	errs := forms.Bind(req, form)
	if !errs.Any() {
		form.Apply(m)
		_, err := a.svc.Update(ctx, m)
		switch {
		case err == nil:
			return nil, true, nil
		case storage.ConflictOn(err, "name"):
			errs.Add("name", "Manufacturer with this Name already exists.")
		default:
			return nil, false, err
		}
	}
	return manufacturerFields(form, errs), false, nil
}

func (a *manufacturerAdmin) delete(ctx context.Context, id int64) error {
	return a.svc.Delete(ctx, id)
}

func manufacturerFields(form *forms.ManufacturerForm, errs forms.FieldErrors) []Field {
	return []Field{
		textField("name", "Name", form.Name, errs),
		textField("country", "Country", form.Country, errs),
	}
}
