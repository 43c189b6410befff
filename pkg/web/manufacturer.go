package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipark/pkg/forms"
	"taxipark/pkg/models"
	"taxipark/storage"
)

const manufacturerListURL = "/manufacturers/"

func (h *Handler) ManufacturerList(c *gin.Context) {
	page, ok := h.pageNumber(c)
	if !ok {
		return
	}
	search := h.bindSearch(c, &forms.ManufacturerSearchForm{})

	res, err := h.svc.Manufacturer().List(c.Request.Context(), search.Value(), page)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.html(c, http.StatusOK, "manufacturer_list.html", gin.H{
		"manufacturer_list": res.Items,
		"search_form":       search,
		"pager":             newPager(res.Page, search.CleanedData()),
	})
}

func (h *Handler) ManufacturerCreate(c *gin.Context) {
	form := &forms.ManufacturerForm{}
	if c.Request.Method == http.MethodGet {
		h.manufacturerForm(c, form, nil, forms.FieldErrors{})
		return
	}

	errs := forms.Bind(c.Request, form)
	if !errs.Any() {
		m := &models.Manufacturer{}
		form.Apply(m)
		_, err := h.svc.Manufacturer().Create(c.Request.Context(), m)
		if err == nil {
			h.redirect(c, manufacturerListURL)
			return
		}
		if !storage.ConflictOn(err, "name") {
			h.fail(c, err)
			return
		}
		errs.Add("name", "Manufacturer with this Name already exists.")
	}
	h.manufacturerForm(c, form, nil, errs)
}

func (h *Handler) ManufacturerUpdate(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	m, err := h.svc.Manufacturer().Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Request.Method == http.MethodGet {
		h.manufacturerForm(c, forms.ManufacturerFormFrom(m), m, forms.FieldErrors{})
		return
	}

	form := &forms.ManufacturerForm{}
	errs := forms.Bind(c.Request, form)
	if !errs.Any() {
		form.Apply(m)
		_, err := h.svc.Manufacturer().Update(ctx, m)
		if err == nil {
			h.redirect(c, manufacturerListURL)
			return
		}
		if !storage.ConflictOn(err, "name") {
			h.fail(c, err)
			return
		}
		errs.Add("name", "Manufacturer with this Name already exists.")
	}
	h.manufacturerForm(c, form, m, errs)
}

func (h *Handler) manufacturerForm(c *gin.Context, form *forms.ManufacturerForm, object *models.Manufacturer, errs forms.FieldErrors) {
	h.html(c, http.StatusOK, "manufacturer_form.html", gin.H{
		"form":   form,
		"object": object,
		"errors": errs,
	})
}

func (h *Handler) ManufacturerDelete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	m, err := h.svc.Manufacturer().Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Request.Method == http.MethodGet {
		h.confirmDelete(c, m.String(), manufacturerListURL)
		return
	}

	if err := h.svc.Manufacturer().Delete(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, manufacturerListURL)
}

func (h *Handler) confirmDelete(c *gin.Context, object, cancelURL string) {
	h.html(c, http.StatusOK, "confirm_delete.html", gin.H{
		"object":     object,
		"cancel_url": cancelURL,
	})
}
