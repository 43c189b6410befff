// Package web serves the fleet management site.
package web

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipark/pkg/admin"
	"taxipark/pkg/logger"
	"taxipark/pkg/web/middleware"
	"taxipark/service"
)

type Options struct {
	// Metrics, when set, instruments every route.
	Metrics *middleware.Metrics
}

func NewRouter(svc service.IServiceManager, log logger.ILogger, opts Options) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	r.Use(middleware.Logging(log))

	views := newRenderer()
	if err := views.add(templateFS, "templates", ""); err != nil {
		return nil, err
	}
	if err := views.add(admin.Templates, "templates", "admin/"); err != nil {
		return nil, err
	}
	r.HTMLRender = views

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	r.StaticFS("/static", http.FS(static))

	h := NewHandler(svc, log)
	r.NoRoute(middleware.Session(svc, log), h.notFound)

	site := r.Group("/", middleware.Session(svc, log))
	{
		site.GET("/accounts/login/", h.Login)
		site.POST("/accounts/login/", h.Login)
		site.GET("/accounts/logout/", h.Logout)
		site.POST("/accounts/logout/", h.Logout)
	}

	protected := site.Group("/", middleware.LoginRequired())
	{
		protected.GET("/", h.Index)

		protected.GET("/manufacturers/", h.ManufacturerList)
		protected.GET("/manufacturers/create/", h.ManufacturerCreate)
		protected.POST("/manufacturers/create/", h.ManufacturerCreate)
		protected.GET("/manufacturers/:id/update/", h.ManufacturerUpdate)
		protected.POST("/manufacturers/:id/update/", h.ManufacturerUpdate)
		protected.GET("/manufacturers/:id/delete/", h.ManufacturerDelete)
		protected.POST("/manufacturers/:id/delete/", h.ManufacturerDelete)

		protected.GET("/cars/", h.CarList)
		protected.GET("/cars/create/", h.CarCreate)
		protected.POST("/cars/create/", h.CarCreate)
		protected.GET("/cars/:id/", h.CarDetail)
		protected.GET("/cars/:id/update/", h.CarUpdate)
		protected.POST("/cars/:id/update/", h.CarUpdate)
		protected.GET("/cars/:id/delete/", h.CarDelete)
		protected.POST("/cars/:id/delete/", h.CarDelete)
		protected.GET("/cars/:id/toggle-assign/", h.CarToggleAssign)
		protected.POST("/cars/:id/toggle-assign/", h.CarToggleAssign)

		protected.GET("/drivers/", h.DriverList)
		protected.GET("/drivers/create/", h.DriverCreate)
		protected.POST("/drivers/create/", h.DriverCreate)
		protected.GET("/drivers/:id/", h.DriverDetail)
		protected.GET("/drivers/:id/update/", h.DriverLicenseUpdate)
		protected.POST("/drivers/:id/update/", h.DriverLicenseUpdate)
		protected.GET("/drivers/:id/delete/", h.DriverDelete)
		protected.POST("/drivers/:id/delete/", h.DriverDelete)
	}

	backOffice, err := admin.New(svc, log)
	if err != nil {
		return nil, err
	}
	backOffice.Register(site.Group("/admin", middleware.StaffRequired()))

	return r, nil
}
