package forms

import (
	"strings"

	"taxipark/pkg/models"
)

const MinPasswordLength = 8

type DriverCreationForm struct {
	Username      string `form:"username" binding:"required,max=150,username"`
	Password1     string `form:"password1" binding:"required,min=8"`
	Password2     string `form:"password2" binding:"required,eqfield=Password1"`
	FirstName     string `form:"first_name" binding:"max=150"`
	LastName      string `form:"last_name" binding:"max=150"`
	Email         string `form:"email" binding:"omitempty,email,max=254"`
	LicenseNumber string `form:"license_number" binding:"required,license"`
}

func (f *DriverCreationForm) Clean(errs FieldErrors) {
	f.Username = strings.TrimSpace(f.Username)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)

	if !errs.Has("password1") && isNumeric(f.Password1) {
		errs.Add("password1", "This password is entirely numeric.")
	}
	if !errs.Has("password1") && strings.EqualFold(f.Password1, f.Username) {
		errs.Add("password1", "The password is too similar to the username.")
	}
}

// Driver builds the record to create; the caller hashes Password1.
func (f *DriverCreationForm) Driver() *models.Driver {
	return &models.Driver{
		Username:      f.Username,
		FirstName:     f.FirstName,
		LastName:      f.LastName,
		Email:         f.Email,
		LicenseNumber: f.LicenseNumber,
		IsActive:      true,
	}
}

type DriverLicenseUpdateForm struct {
	LicenseNumber string `form:"license_number" binding:"required,license"`
}

func (f *DriverLicenseUpdateForm) Clean(errs FieldErrors) {}

// DriverChangeForm is the admin edit form for a driver account.
type DriverChangeForm struct {
	Username      string `form:"username" binding:"required,max=150,username"`
	FirstName     string `form:"first_name" binding:"max=150"`
	LastName      string `form:"last_name" binding:"max=150"`
	Email         string `form:"email" binding:"omitempty,email,max=254"`
	LicenseNumber string `form:"license_number" binding:"omitempty,license"`
	IsActive      bool   `form:"is_active"`
	IsStaff       bool   `form:"is_staff"`
	IsSuperuser   bool   `form:"is_superuser"`
}

func DriverChangeFormFrom(d *models.Driver) *DriverChangeForm {
	return &DriverChangeForm{
		Username:      d.Username,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Email:         d.Email,
		LicenseNumber: d.LicenseNumber,
		IsActive:      d.IsActive,
		IsStaff:       d.IsStaff,
		IsSuperuser:   d.IsSuperuser,
	}
}

func (f *DriverChangeForm) Clean(errs FieldErrors) {
	f.Username = strings.TrimSpace(f.Username)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
}

func (f *DriverChangeForm) Apply(d *models.Driver) {
	d.Username = f.Username
	d.FirstName = f.FirstName
	d.LastName = f.LastName
	d.Email = f.Email
	d.LicenseNumber = f.LicenseNumber
	d.IsActive = f.IsActive
	d.IsStaff = f.IsStaff
	d.IsSuperuser = f.IsSuperuser
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

func (f *LoginForm) Clean(errs FieldErrors) {
	f.Username = strings.TrimSpace(f.Username)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
