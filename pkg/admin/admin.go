// Package admin is the staff-only back office: a changelist with search and
// filters, a change form and a delete confirmation for every registered model.
// Which columns, search fields and filters a model gets comes from admin.yaml.
package admin

import (
	"embed"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"taxipark/pkg/logger"
	"taxipark/pkg/web/middleware"
	"taxipark/service"
	"taxipark/storage"
)

// Templates holds the admin pages; they render inside the site layout.
//
//go:embed templates/*.html
var Templates embed.FS

type registered struct {
	ModelConfig
	admin modelAdmin
}

type Admin struct {
	app    string
	log    logger.ILogger
	models map[string]*registered
	order  []*registered
}

// New builds the admin from the embedded admin.yaml.
func New(svc service.IServiceManager, log logger.ILogger) (*Admin, error) {
	cfg, err := ParseConfig(defaultConfig)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(svc, log, cfg)
}

func NewWithConfig(svc service.IServiceManager, log logger.ILogger, cfg *Config) (*Admin, error) {
	available := map[string]modelAdmin{
		"manufacturer": &manufacturerAdmin{svc: svc.Manufacturer()},
		"car":          &carAdmin{cars: svc.Car(), manufacturers: svc.Manufacturer(), drivers: svc.Driver()},
		"driver":       &driverAdmin{svc: svc.Driver()},
	}

	a := &Admin{app: cfg.App, log: log, models: make(map[string]*registered)}
	for _, mc := range cfg.Models {
		ma, ok := available[mc.Name]
		if !ok {
			return nil, fmt.Errorf("admin config: unknown model %q", mc.Name)
		}
		if err := mc.checkFields(ma.fields()); err != nil {
			return nil, err
		}
		if mc.ListPerPage <= 0 {
			mc.ListPerPage = defaultListPerPage
		}
		if mc.VerboseName == "" {
			mc.VerboseName = strings.ToUpper(mc.Name[:1]) + mc.Name[1:] + "s"
		}
		reg := &registered{ModelConfig: mc, admin: ma}
		a.models[mc.Name] = reg
		a.order = append(a.order, reg)
	}
	return a, nil
}

func (a *Admin) Register(r gin.IRoutes) {
	r.GET("/", a.index)
	r.GET("/:app/:model/", a.changelist)
	r.GET("/:app/:model/:id/change/", a.change)
	r.POST("/:app/:model/:id/change/", a.change)
	r.GET("/:app/:model/:id/delete/", a.delete)
	r.POST("/:app/:model/:id/delete/", a.delete)
}

func (a *Admin) html(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["user"] = middleware.CurrentDriver(c)
	data["app"] = a.app
	data["path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

func (a *Admin) notFound(c *gin.Context) {
	a.html(c, http.StatusNotFound, "404.html", nil)
}

func (a *Admin) fail(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		a.notFound(c)
		return
	}
	_ = c.Error(err)
	a.html(c, http.StatusInternalServerError, "500.html", nil)
}

// lookup resolves the :app/:model params; it answers 404 itself on failure.
func (a *Admin) lookup(c *gin.Context) (*registered, bool) {
	m, ok := a.models[c.Param("model")]
	if !ok || c.Param("app") != a.app {
		a.notFound(c)
		return nil, false
	}
	return m, true
}

func (a *Admin) lookupObject(c *gin.Context) (*registered, int64, bool) {
	m, ok := a.lookup(c)
	if !ok {
		return nil, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		a.notFound(c)
		return nil, 0, false
	}
	return m, id, true
}

func (a *Admin) changelistURL(m *registered) string {
	return fmt.Sprintf("/admin/%s/%s/", a.app, m.Name)
}

func (a *Admin) index(c *gin.Context) {
	a.html(c, http.StatusOK, "admin/index.html", gin.H{"models": a.order})
}

func (a *Admin) changelist(c *gin.Context) {
	m, ok := a.lookup(c)
	if !ok {
		return
	}

	all, err := m.admin.rows(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}

	number := 1
	if raw := c.Query(pageParam); raw != "" {
		if number, err = strconv.Atoi(raw); err != nil {
			a.notFound(c)
			return
		}
	}

	query := without(c.Request.URL.Query(), pageParam)
	q := strings.TrimSpace(query.Get("q"))
	matched := filter(search(all, m.SearchFields, q), activeFilters(m.ListFilter, query))
	rows, page, ok := pageRows(matched, number, m.ListPerPage)
	if !ok {
		a.notFound(c)
		return
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, 0, len(m.ListDisplay))
		for _, f := range m.ListDisplay {
			line = append(line, r.Values[f])
		}
		cells = append(cells, line)
	}

	columns := make([]string, 0, len(m.ListDisplay))
	for _, f := range m.ListDisplay {
		columns = append(columns, title(f))
	}

	a.html(c, http.StatusOK, "admin/change_list.html", gin.H{
		"model":         m,
		"columns":       columns,
		"rows":          rows,
		"cells":         cells,
		"q":             q,
		"search_fields": m.SearchFields,
		"filters":       buildFilters(m.ListFilter, all, query),
		"total":         len(all),
		"matched":       len(matched),
		"pager":         pager{Page: page, query: query},
	})
}

func (a *Admin) change(c *gin.Context) {
	m, id, ok := a.lookupObject(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	label, err := m.admin.label(ctx, id)
	if err != nil {
		a.fail(c, err)
		return
	}

	var fields []Field
	if c.Request.Method == http.MethodGet {
		fields, err = m.admin.changeForm(ctx, id)
	} else {
		var saved bool
		fields, saved, err = m.admin.change(ctx, id, c.Request)
		if err == nil && saved {
			a.log.Info("admin change saved",
				logger.String("model", m.Name),
				logger.Int64("id", id),
				logger.Int64("by", middleware.CurrentDriver(c).ID),
			)
			c.Redirect(http.StatusFound, a.changelistURL(m))
			return
		}
	}
	if err != nil {
		a.fail(c, err)
		return
	}

	a.html(c, http.StatusOK, "admin/change_form.html", gin.H{
		"model":  m,
		"id":     id,
		"object": label,
		"fields": fields,
	})
}

func (a *Admin) delete(c *gin.Context) {
	m, id, ok := a.lookupObject(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	label, err := m.admin.label(ctx, id)
	if err != nil {
		a.fail(c, err)
		return
	}
	if c.Request.Method == http.MethodGet {
		a.html(c, http.StatusOK, "admin/delete_confirmation.html", gin.H{
			"model":  m,
			"id":     id,
			"object": label,
		})
		return
	}

	if err := m.admin.delete(ctx, id); err != nil {
		a.fail(c, err)
		return
	}
	a.log.Info("admin object deleted", logger.String("model", m.Name), logger.Int64("id", id))
	c.Redirect(http.StatusFound, a.changelistURL(m))
}
