package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"strconv"

	"github.com/gin-gonic/gin/render"

	"taxipark/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layout = "templates/base.html"

// renderer is a gin HTMLRender holding one template set per page, each
// parsed together with the shared layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() *renderer {
	return &renderer{pages: make(map[string]*template.Template)}
}

// add parses every *.html in dir of fsys as a page named prefix+filename.
func (r *renderer) add(fsys fs.FS, dir, prefix string) error {
	base, err := template.New("base.html").ParseFS(templateFS, layout)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return err
	}
	for _, file := range files {
		name := prefix + path.Base(file)
		if name == "base.html" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return err
		}
		page, err := clone.ParseFS(fsys, file)
		if err != nil {
			return fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[name] = page
	}
	return nil
}

func (r *renderer) Instance(name string, data any) render.Render {
	page, ok := r.pages[name]
	if !ok {
		panic("web: unknown template " + name)
	}
	return render.HTML{Template: page, Name: "base", Data: data}
}

// pager links pages of a list while keeping the active search parameters.
type pager struct {
	models.Page
	Params map[string]string
}

func newPager(page models.Page, params map[string]string) pager {
	return pager{Page: page, Params: params}
}

func (p pager) URL(number int) string {
	q := url.Values{}
	for k, v := range p.Params {
		if v != "" {
			q.Set(k, v)
		}
	}
	q.Set("page", strconv.Itoa(number))
	return "?" + q.Encode()
}
