package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taxipark/pkg/auth"
	"taxipark/pkg/forms"
	"taxipark/pkg/logger"
	"taxipark/pkg/web/middleware"
)

func (h *Handler) Login(c *gin.Context) {
	form := &forms.LoginForm{Next: c.Query("next")}
	if c.Request.Method == http.MethodGet {
		h.html(c, http.StatusOK, "login.html", gin.H{"form": form})
		return
	}

	errs := forms.Bind(c.Request, form)
	if !errs.Any() {
		ctx := c.Request.Context()
		d, err := h.svc.Auth().Authenticate(ctx, form.Username, form.Password)
		switch {
		case err == nil:
			_, token, err := h.svc.Session().Login(ctx, middleware.CurrentSession(c), d.ID)
			if err != nil {
				h.fail(c, err)
				return
			}
			middleware.SetSessionCookie(c, token, h.svc.Session().TTL())
			h.log.Info("driver logged in", logger.String("username", d.Username))
			h.redirect(c, safeNext(form.Next))
			return
		case errors.Is(err, auth.ErrInvalidCredentials):
			errs.Add(forms.NonFieldErrors, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
		default:
			h.fail(c, err)
			return
		}
	}
	form.Password = ""
	h.html(c, http.StatusOK, "login.html", gin.H{"form": form, "errors": errs})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Session().Logout(c.Request.Context(), middleware.CurrentSession(c)); err != nil {
		h.fail(c, err)
		return
	}
	middleware.ClearSessionCookie(c)
	h.html(c, http.StatusOK, "logged_out.html", nil)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
