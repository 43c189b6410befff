package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taxipark/pkg/forms"
	"taxipark/pkg/logger"
	"taxipark/pkg/web/middleware"
	"taxipark/service"
	"taxipark/storage"
)

type Handler struct {
	svc service.IServiceManager
	log logger.ILogger
}

func NewHandler(svc service.IServiceManager, log logger.ILogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// html renders a page with the values every template expects.
func (h *Handler) html(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["errors"]; !ok {
		data["errors"] = forms.FieldErrors{}
	}
	data["user"] = middleware.CurrentDriver(c)
	data["path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

func (h *Handler) notFound(c *gin.Context) {
	h.html(c, http.StatusNotFound, "404.html", nil)
}

// fail maps service errors to a 404 or a logged 500.
func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, service.ErrPageNotFound) {
		h.notFound(c)
		return
	}
	_ = c.Error(err)
	h.html(c, http.StatusInternalServerError, "500.html", nil)
}

func (h *Handler) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// pathID parses the :id route parameter; it answers 404 itself on failure.
func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.notFound(c)
		return 0, false
	}
	return id, true
}

// pageNumber reads ?page=N, defaulting to 1. Garbage answers 404.
func (h *Handler) pageNumber(c *gin.Context) (int, bool) {
	raw := c.Query("page")
	if raw == "" {
		return 1, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		h.notFound(c)
		return 0, false
	}
	return n, true
}

// bindSearch decodes a list view's search form. Search never rejects a
// request, so a decode failure is only logged.
func (h *Handler) bindSearch(c *gin.Context, form forms.SearchForm) forms.SearchForm {
	search, err := forms.BindSearch(c.Request, form)
	if err != nil {
		h.log.Warning("search form ignored", logger.String("path", c.Request.URL.Path), logger.Error(err))
	}
	return search
}
