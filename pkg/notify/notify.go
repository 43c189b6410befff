// Package notify tells fleet admins about driver assignment changes.
package notify

import (
	"context"
	"fmt"

	"taxipark/pkg/models"
)

type Notifier interface {
	AssignmentChanged(ctx context.Context, car *models.Car, driver *models.Driver, assigned bool)
}

// Nop is used when no notification channel is configured.
type Nop struct{}

func (Nop) AssignmentChanged(context.Context, *models.Car, *models.Driver, bool) {}

// AssignmentMessage renders the text sent for one toggle.
func AssignmentMessage(car *models.Car, driver *models.Driver, assigned bool) string {
	if assigned {
		return fmt.Sprintf("🚕 %s assigned to %s (#%d)", driver.Username, car.Model, car.ID)
	}
	return fmt.Sprintf("🚫 %s removed from %s (#%d)", driver.Username, car.Model, car.ID)
}
