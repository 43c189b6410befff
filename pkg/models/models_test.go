package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStringRepresentations(t *testing.T) {
	m := Manufacturer{Name: "test_name", Country: "test_country"}
	assert.Equal(t, "test_name test_country", m.String())

	d := Driver{Username: "test", FirstName: "John", LastName: "Smith"}
	assert.Equal(t, "test (John Smith)", d.String())

	anonymous := Driver{Username: "test"}
	assert.Equal(t, "test ( )", anonymous.String())

	c := Car{Model: "test_model"}
	assert.Equal(t, "test_model", c.String())
}

func TestCarDrivers(t *testing.T) {
	c := Car{Drivers: []*Driver{{ID: 3}, {ID: 7}}}

	assert.True(t, c.HasDriver(7))
	assert.False(t, c.HasDriver(4))
	assert.Equal(t, []int64{3, 7}, c.DriverIDs())
}

func TestPage(t *testing.T) {
	tests := []struct {
		name                    string
		number, size, total     int
		numPages                int
		valid, hasPrev, hasNext bool
		offset                  int
	}{
		{"empty list first page", 1, 5, 0, 1, true, false, false, 0},
		{"single page", 1, 5, 5, 1, true, false, false, 0},
		{"first of three", 1, 5, 11, 3, true, false, true, 0},
		{"last of three", 3, 5, 11, 3, true, true, false, 10},
		{"past the end", 4, 5, 11, 3, false, true, false, 15},
		{"zero page", 0, 5, 11, 3, false, false, true, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.number, tt.size, tt.total)
			assert.Equal(t, tt.numPages, p.NumPages)
			assert.Equal(t, tt.valid, p.Valid())
			assert.Equal(t, tt.hasPrev, p.HasPrevious())
			assert.Equal(t, tt.hasNext, p.HasNext())
			assert.Equal(t, tt.offset, p.Offset())
		})
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))
	assert.False(t, s.Authenticated())

	id := int64(1)
	s.DriverID = &id
	assert.True(t, s.Authenticated())
}
