package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipark/pkg/web/middleware"
)

func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	visits := 0
	if sess := middleware.CurrentSession(c); sess != nil {
		if visits, err = h.svc.Session().Visit(ctx, sess); err != nil {
			h.fail(c, err)
			return
		}
	}

	h.html(c, http.StatusOK, "index.html", gin.H{
		"num_drivers":       stats.NumDrivers,
		"num_cars":          stats.NumCars,
		"num_manufacturers": stats.NumManufacturers,
		"num_visits":        visits,
	})
}
