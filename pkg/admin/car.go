package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"taxipark/pkg/forms"
	"taxipark/service"
)

type carAdmin struct {
	cars          service.CarService
	manufacturers service.ManufacturerService
	drivers       service.DriverService
}

func (a *carAdmin) fields() []string {
	return []string{"model", "manufacturer"}
}

func (a *carAdmin) rows(ctx context.Context) ([]Row, error) {
	list, err := a.cars.All(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(list))
	for _, c := range list {
		manufacturer := ""
		if c.Manufacturer != nil {
			manufacturer = c.Manufacturer.String()
		}
		rows = append(rows, Row{
			ID:     c.ID,
			Label:  c.String(),
			Values: map[string]string{"model": c.Model, "manufacturer": manufacturer},
		})
	}
	return rows, nil
}

func (a *carAdmin) label(ctx context.Context, id int64) (string, error) {
	c, err := a.cars.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func (a *carAdmin) changeForm(ctx context.Context, id int64) ([]Field, error) {
	c, err := a.cars.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.formFields(ctx, forms.CarFormFrom(c), forms.FieldErrors{})
}

func (a *carAdmin) change(ctx context.Context, id int64, req *http.Request) ([]Field, bool, error) {
	c, err := a.cars.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	form := &forms.CarForm{}
	errs := forms.Bind(req, form)
	if !errs.Any() {
		form.Apply(c)
		_, err := a.cars.Update(ctx, c)
		var invalid *service.InvalidChoiceError
		switch {
		case err == nil:
			return nil, true, nil
		case errors.As(err, &invalid):
			errs.Add(invalid.Field, fmt.Sprintf("Select a valid choice. %d is not one of the available choices.", invalid.ID))
		default:
			return nil, false, err
		}
	}

	fields, err := a.formFields(ctx, form, errs)
	return fields, false, err
}

func (a *carAdmin) delete(ctx context.Context, id int64) error {
	return a.cars.Delete(ctx, id)
}

func (a *carAdmin) formFields(ctx context.Context, form *forms.CarForm, errs forms.FieldErrors) ([]Field, error) {
	manufacturers, err := a.manufacturers.All(ctx)
	if err != nil {
		return nil, err
	}
	drivers, err := a.drivers.All(ctx)
	if err != nil {
		return nil, err
	}

	manufacturer := Field{Name: "manufacturer", Label: "Manufacturer", Kind: kindSelect, Errors: errs.Get("manufacturer")}
	for _, m := range manufacturers {
		manufacturer.Choices = append(manufacturer.Choices, choice(m.ID, m.String(), m.ID == form.ManufacturerID))
	}

	driverField := Field{Name: "drivers", Label: "Drivers", Kind: kindMultiSelect, Errors: errs.Get("drivers")}
	for _, d := range drivers {
		driverField.Choices = append(driverField.Choices, choice(d.ID, d.String(), form.Selected(d.ID)))
	}

	return []Field{
		textField("model", "Model", form.Model, errs),
		manufacturer,
		driverField,
	}, nil
}

func choice(id int64, label string, selected bool) Choice {
	return Choice{Value: strconv.FormatInt(id, 10), Label: label, Selected: selected}
}
