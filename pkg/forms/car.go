package forms

import (
	"strconv"
	"strings"

	"taxipark/pkg/models"
)

type CarForm struct {
	Model        string   `form:"model" binding:"required,max=255"`
	Manufacturer string   `form:"manufacturer" binding:"required"`
	Drivers      []string `form:"drivers"`

	ManufacturerID int64   `form:"-"`
	DriverIDs      []int64 `form:"-"`
}

func CarFormFrom(c *models.Car) *CarForm {
	f := &CarForm{
		Model:          c.Model,
		Manufacturer:   strconv.FormatInt(c.ManufacturerID, 10),
		ManufacturerID: c.ManufacturerID,
		DriverIDs:      c.DriverIDs(),
	}
	for _, id := range f.DriverIDs {
		f.Drivers = append(f.Drivers, strconv.FormatInt(id, 10))
	}
	return f
}

func (f *CarForm) Clean(errs FieldErrors) {
	f.Model = strings.TrimSpace(f.Model)

	if !errs.Has("manufacturer") {
		id, err := strconv.ParseInt(f.Manufacturer, 10, 64)
		if err != nil || id <= 0 {
			errs.Add("manufacturer", "Select a valid choice.")
		} else {
			f.ManufacturerID = id
		}
	}

	f.DriverIDs = f.DriverIDs[:0]
	seen := make(map[int64]bool, len(f.Drivers))
	for _, raw := range f.Drivers {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errs.Add("drivers", "Select a valid choice. "+raw+" is not one of the available choices.")
			continue
		}
		if !seen[id] {
			seen[id] = true
			f.DriverIDs = append(f.DriverIDs, id)
		}
	}
}

// Selected reports whether driverID is among the chosen drivers.
func (f *CarForm) Selected(driverID int64) bool {
	for _, id := range f.DriverIDs {
		if id == driverID {
			return true
		}
	}
	return false
}

// Apply copies cleaned values onto c; driver entries carry ids only.
func (f *CarForm) Apply(c *models.Car) {
	c.Model = f.Model
	c.ManufacturerID = f.ManufacturerID
	c.Drivers = make([]*models.Driver, 0, len(f.DriverIDs))
	for _, id := range f.DriverIDs {
		c.Drivers = append(c.Drivers, &models.Driver{ID: id})
	}
}
