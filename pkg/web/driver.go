package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipark/pkg/forms"
	"taxipark/pkg/models"
	"taxipark/storage"
)

const driverListURL = "/drivers/"

func driverDetailURL(id int64) string {
	return fmt.Sprintf("/drivers/%d/", id)
}

func (h *Handler) DriverList(c *gin.Context) {
	page, ok := h.pageNumber(c)
	if !ok {
		return
	}
	search := h.bindSearch(c, &forms.DriverSearchForm{})

	res, err := h.svc.Driver().List(c.Request.Context(), search.Value(), page)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.html(c, http.StatusOK, "driver_list.html", gin.H{
		"driver_list": res.Items,
		"search_form": search,
		"pager":       newPager(res.Page, search.CleanedData()),
	})
}

func (h *Handler) DriverDetail(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	d, err := h.svc.Driver().Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.html(c, http.StatusOK, "driver_detail.html", gin.H{"driver": d})
}

func (h *Handler) DriverCreate(c *gin.Context) {
	form := &forms.DriverCreationForm{}
	if c.Request.Method == http.MethodGet {
		h.html(c, http.StatusOK, "driver_form.html", gin.H{"form": form})
		return
	}

	errs := forms.Bind(c.Request, form)
	if !errs.Any() {
		d, err := h.svc.Driver().Create(c.Request.Context(), form.Driver(), form.Password1)
		switch {
		case err == nil:
			h.redirect(c, driverDetailURL(d.ID))
			return
		case storage.ConflictOn(err, "license_number"):
			errs.Add("license_number", "Driver with this License number already exists.")
		case storage.ConflictOn(err, "username"):
			errs.Add("username", "A user with that username already exists.")
		default:
			h.fail(c, err)
			return
		}
	}
	h.html(c, http.StatusOK, "driver_form.html", gin.H{"form": form, "errors": errs})
}

// DriverLicenseUpdate changes only the license number of a driver.
func (h *Handler) DriverLicenseUpdate(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	d, err := h.svc.Driver().Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Request.Method == http.MethodGet {
		form := &forms.DriverLicenseUpdateForm{LicenseNumber: d.LicenseNumber}
		h.licenseForm(c, form, d, forms.FieldErrors{})
		return
	}

	form := &forms.DriverLicenseUpdateForm{}
	errs := forms.Bind(c.Request, form)
	if !errs.Any() {
		err := h.svc.Driver().UpdateLicense(ctx, id, form.LicenseNumber)
		switch {
		case err == nil:
			h.redirect(c, driverDetailURL(id))
			return
		case storage.ConflictOn(err, "license_number"):
			errs.Add("license_number", "Driver with this License number already exists.")
		default:
			h.fail(c, err)
			return
		}
	}
	h.licenseForm(c, form, d, errs)
}

func (h *Handler) licenseForm(c *gin.Context, form *forms.DriverLicenseUpdateForm, d *models.Driver, errs forms.FieldErrors) {
	h.html(c, http.StatusOK, "driver_license_form.html", gin.H{
		"form":   form,
		"object": d,
		"errors": errs,
	})
}

func (h *Handler) DriverDelete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	d, err := h.svc.Driver().Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Request.Method == http.MethodGet {
		h.confirmDelete(c, d.String(), driverDetailURL(d.ID))
		return
	}

	if err := h.svc.Driver().Delete(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, driverListURL)
}
