// Package middleware holds the gin middleware shared by the site and the admin.
package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/service"
	"taxipark/storage"
)

const (
	SessionCookie = "sessionid"
	LoginURL      = "/accounts/login/"

	sessionKey = "session"
	driverKey  = "driver"
)

// Session resolves the session cookie and stores the session and its driver
// in the gin context. Invalid cookies are cleared and the request continues
// as anonymous.
func Session(svc service.IServiceManager, log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		sess, err := svc.Session().Load(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrNoSession) {
				log.Error("failed to load session", logger.Error(err))
			}
			ClearSessionCookie(c)
			c.Next()
			return
		}
		c.Set(sessionKey, sess)

		if sess.Authenticated() {
			d, err := svc.Auth().User(c.Request.Context(), *sess.DriverID)
			switch {
			case err == nil:
				c.Set(driverKey, d)
			case errors.Is(err, storage.ErrNotFound):
			default:
				log.Error("failed to load session driver", logger.Error(err))
			}
		}
		c.Next()
	}
}

func CurrentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return nil
}

// CurrentDriver returns the logged-in driver, or nil for anonymous requests.
func CurrentDriver(c *gin.Context) *models.Driver {
	if v, ok := c.Get(driverKey); ok {
		if d, ok := v.(*models.Driver); ok {
			return d
		}
	}
	return nil
}

func SetSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoginRequired redirects anonymous requests to the login page.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentDriver(c) == nil {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// StaffRequired lets only staff accounts through.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if d := CurrentDriver(c); d == nil || !d.IsStaff {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginURL+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}
