package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipark/pkg/forms"
	"taxipark/pkg/models"
	"taxipark/pkg/web/middleware"
	"taxipark/service"
)

const carListURL = "/cars/"

func carDetailURL(id int64) string {
	return fmt.Sprintf("/cars/%d/", id)
}

func (h *Handler) CarList(c *gin.Context) {
	page, ok := h.pageNumber(c)
	if !ok {
		return
	}
	search := h.bindSearch(c, &forms.CarSearchForm{})

	res, err := h.svc.Car().List(c.Request.Context(), search.Value(), page)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.html(c, http.StatusOK, "car_list.html", gin.H{
		"car_list":    res.Items,
		"search_form": search,
		"pager":       newPager(res.Page, search.CleanedData()),
	})
}

func (h *Handler) CarDetail(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	car, err := h.svc.Car().Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	assigned := false
	if d := middleware.CurrentDriver(c); d != nil {
		assigned = car.HasDriver(d.ID)
	}
	h.html(c, http.StatusOK, "car_detail.html", gin.H{
		"car":      car,
		"assigned": assigned,
	})
}

func (h *Handler) CarCreate(c *gin.Context) {
	form := &forms.CarForm{}
	if c.Request.Method == http.MethodGet {
		h.carForm(c, form, nil, forms.FieldErrors{})
		return
	}

	errs := forms.Bind(c.Request, form)
	if !errs.Any() {
		car := &models.Car{}
		form.Apply(car)
		if h.saveCar(c, car, errs, false) {
			return
		}
	}
	h.carForm(c, form, nil, errs)
}

func (h *Handler) CarUpdate(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	car, err := h.svc.Car().Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Request.Method == http.MethodGet {
		h.carForm(c, forms.CarFormFrom(car), car, forms.FieldErrors{})
		return
	}

	form := &forms.CarForm{}
	errs := forms.Bind(c.Request, form)
	if !errs.Any() {
		form.Apply(car)
		if h.saveCar(c, car, errs, true) {
			return
		}
	}
	h.carForm(c, form, car, errs)
}

// saveCar persists the car and redirects. Unknown manufacturer or driver ids
// become field errors; it returns true once a response has been written.
func (h *Handler) saveCar(c *gin.Context, car *models.Car, errs forms.FieldErrors, update bool) bool {
	var err error
	if update {
		_, err = h.svc.Car().Update(c.Request.Context(), car)
	} else {
		_, err = h.svc.Car().Create(c.Request.Context(), car)
	}

	var invalid *service.InvalidChoiceError
	switch {
	case err == nil:
		h.redirect(c, carListURL)
		return true
	case errors.As(err, &invalid):
		errs.Add(invalid.Field, fmt.Sprintf("Select a valid choice. %d is not one of the available choices.", invalid.ID))
		return false
	default:
		h.fail(c, err)
		return true
	}
}

func (h *Handler) carForm(c *gin.Context, form *forms.CarForm, object *models.Car, errs forms.FieldErrors) {
	ctx := c.Request.Context()
	manufacturers, err := h.svc.Manufacturer().All(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	drivers, err := h.svc.Driver().All(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.html(c, http.StatusOK, "car_form.html", gin.H{
		"form":          form,
		"object":        object,
		"errors":        errs,
		"manufacturers": manufacturers,
		"drivers":       drivers,
	})
}

func (h *Handler) CarDelete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	car, err := h.svc.Car().Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Request.Method == http.MethodGet {
		h.confirmDelete(c, car.String(), carDetailURL(car.ID))
		return
	}

	if err := h.svc.Car().Delete(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, carListURL)
}

// CarToggleAssign adds the current driver to the car or removes them.
func (h *Handler) CarToggleAssign(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if _, err := h.svc.Car().ToggleAssignment(c.Request.Context(), id, middleware.CurrentDriver(c)); err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, carDetailURL(id))
}
