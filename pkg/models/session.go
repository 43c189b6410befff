package models

import "time"

type Session struct {
	Key       string    `json:"key"`
	DriverID  *int64    `json:"driver_id"`
	NumVisits int       `json:"num_visits"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s Session) Authenticated() bool {
	return s.DriverID != nil
}
