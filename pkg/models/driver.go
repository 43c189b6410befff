package models

import (
	"fmt"
	"time"
)

// Driver is a user account that can be assigned to cars.
type Driver struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	PasswordHash  string     `json:"-"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	LicenseNumber string     `json:"license_number"`
	IsStaff       bool       `json:"is_staff"`
	IsSuperuser   bool       `json:"is_superuser"`
	IsActive      bool       `json:"is_active"`
	DateJoined    time.Time  `json:"date_joined"`
	LastLogin     *time.Time `json:"last_login"`

	Cars []*Car `json:"cars,omitempty"`
}

func (d Driver) String() string {
	return fmt.Sprintf("%s (%s %s)", d.Username, d.FirstName, d.LastName)
}

func (d Driver) FullName() string {
	return d.FirstName + " " + d.LastName
}
