package forms

import (
	"strings"

	"taxipark/pkg/models"
)

type ManufacturerForm struct {
	Name    string `form:"name" binding:"required,max=255"`
	Country string `form:"country" binding:"required,max=255"`
}

func ManufacturerFormFrom(m *models.Manufacturer) *ManufacturerForm {
	return &ManufacturerForm{Name: m.Name, Country: m.Country}
}

func (f *ManufacturerForm) Clean(errs FieldErrors) {
	f.Name = strings.TrimSpace(f.Name)
	f.Country = strings.TrimSpace(f.Country)
}

func (f *ManufacturerForm) Apply(m *models.Manufacturer) {
	m.Name = f.Name
	m.Country = f.Country
}
