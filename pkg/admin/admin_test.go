package admin_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxipark/pkg/logger"
	"taxipark/pkg/models"
	"taxipark/pkg/web"
	"taxipark/pkg/web/middleware"
	"taxipark/service"
	"taxipark/storage/sqlite"
)

const password = "s3cret-pass"

type site struct {
	t      *testing.T
	router *gin.Engine
	svc    service.IServiceManager
	cookie *http.Cookie
}

func newSite(t *testing.T) *site {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := sqlite.New(filepath.Join(t.TempDir(), "admin.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	svc := service.New(store, logger.Nop(), service.Options{SecretKey: "test-secret", SessionTTL: time.Hour})
	router, err := web.NewRouter(svc, logger.Nop(), web.Options{})
	require.NoError(t, err)
	return &site{t: t, router: router, svc: svc}
}

func (s *site) driver(username, license string, staff bool) *models.Driver {
	s.t.Helper()
	d, err := s.svc.Driver().Create(context.Background(), &models.Driver{
		Username:      username,
		Email:         username + "@example.com",
		LicenseNumber: license,
		IsActive:      true,
		IsStaff:       staff,
	}, password)
	require.NoError(s.t, err)
	return d
}

func (s *site) login(username string) {
	s.t.Helper()
	rec := s.post("/accounts/login/", url.Values{"username": {username}, "password": {password}})
	require.Equal(s.t, http.StatusFound, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			s.cookie = c
		}
	}
	require.NotNil(s.t, s.cookie)
}

func (s *site) do(req *http.Request) *httptest.ResponseRecorder {
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *site) get(target string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (s *site) post(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestAdminRequiresStaff(t *testing.T) {
	s := newSite(t)
	s.driver("driver1", "ABC12345", false)

	rec := s.get("/admin/")
	assert.Equal(t, http.StatusFound, rec.Code)

	s.login("driver1")
	rec = s.get("/admin/taxi/driver/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/accounts/login/?next="))
}

func TestAdminIndex(t *testing.T) {
	s := newSite(t)
	s.driver("admin", "", true)
	s.login("admin")

	rec := s.get("/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/admin/taxi/manufacturer/"`)
	assert.Contains(t, body, `href="/admin/taxi/car/"`)
	assert.Contains(t, body, `href="/admin/taxi/driver/"`)

	assert.Equal(t, http.StatusNotFound, s.get("/admin/taxi/unicorn/").Code)
	assert.Equal(t, http.StatusNotFound, s.get("/admin/other/car/").Code)
}

func TestCarChangelistSearchAndFilter(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	s.driver("admin", "", true)

	bmw, err := s.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: "BMW", Country: "Germany"})
	require.NoError(t, err)
	audi, err := s.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: "Audi", Country: "Germany"})
	require.NoError(t, err)
	_, err = s.svc.Car().Create(ctx, &models.Car{Model: "X5", ManufacturerID: bmw.ID})
	require.NoError(t, err)
	_, err = s.svc.Car().Create(ctx, &models.Car{Model: "A4", ManufacturerID: audi.ID})
	require.NoError(t, err)
	s.login("admin")

	rec := s.get("/admin/taxi/car/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "By manufacturer")
	assert.Contains(t, body, "Search by model")
	assert.Contains(t, body, "X5")
	assert.Contains(t, body, "A4")

	rec = s.get("/admin/taxi/car/?q=x")
	body = rec.Body.String()
	assert.Contains(t, body, "X5")
	assert.NotContains(t, body, ">A4<")

	rec = s.get("/admin/taxi/car/?manufacturer=" + url.QueryEscape("Audi Germany"))
	body = rec.Body.String()
	assert.Contains(t, body, ">A4<")
	assert.NotContains(t, body, ">X5<")
}

func TestChangelistIsPaged(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	s.driver("admin", "", true)
	for i := 0; i <= 100; i++ {
		_, err := s.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: fmt.Sprintf("maker-%03d", i), Country: "X"})
		require.NoError(t, err)
	}
	s.login("admin")

	rec := s.get("/admin/taxi/manufacturer/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "101 results")
	assert.Contains(t, body, ">maker-099<")
	assert.NotContains(t, body, ">maker-100<")
	assert.Contains(t, body, `href="?p=2"`)

	rec = s.get("/admin/taxi/manufacturer/?p=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, ">maker-100<")
	assert.NotContains(t, body, ">maker-000<")

	assert.Equal(t, http.StatusNotFound, s.get("/admin/taxi/manufacturer/?p=3").Code)
	assert.Equal(t, http.StatusNotFound, s.get("/admin/taxi/manufacturer/?p=last").Code)
}

func TestDriverAdminShowsLicense(t *testing.T) {
	s := newSite(t)
	s.driver("admin", "", true)
	d := s.driver("driver1", "XYZ98765", false)
	s.login("admin")

	rec := s.get("/admin/taxi/driver/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "XYZ98765")
	assert.Contains(t, rec.Body.String(), "license number")

	rec = s.get("/admin/taxi/driver/?is_staff=Yes")
	assert.NotContains(t, rec.Body.String(), "XYZ98765")

	rec = s.get("/admin/taxi/driver/" + id(d.ID) + "/change/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "XYZ98765")
	assert.Contains(t, rec.Body.String(), "License number")
}

func TestDriverAdminChange(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	s.driver("admin", "", true)
	d := s.driver("driver1", "XYZ98765", false)
	s.login("admin")

	target := "/admin/taxi/driver/" + id(d.ID) + "/change/"

	rec := s.post(target, url.Values{"username": {"driver1"}, "license_number": {"bad"}, "is_active": {"true"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "License number should consist of 8 characters.")

	rec = s.post(target, url.Values{
		"username":       {"driver1"},
		"first_name":     {"Jane"},
		"license_number": {"XYZ98765"},
		"is_active":      {"true"},
		"is_staff":       {"true"},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/taxi/driver/", rec.Header().Get("Location"))

	updated, err := s.svc.Driver().Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", updated.FirstName)
	assert.True(t, updated.IsStaff)
	assert.False(t, updated.IsSuperuser)

	assert.Equal(t, http.StatusNotFound, s.get("/admin/taxi/driver/999/change/").Code)
}

func TestManufacturerAdminDelete(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	s.driver("admin", "", true)
	m, err := s.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: "Lada", Country: "Russia"})
	require.NoError(t, err)
	s.login("admin")

	target := "/admin/taxi/manufacturer/" + id(m.ID) + "/delete/"
	rec := s.get(target)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lada Russia")

	rec = s.post(target, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/taxi/manufacturer/", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, s.get(target).Code)
}

func TestCarAdminChange(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	s.driver("admin", "", true)
	d := s.driver("driver1", "XYZ98765", false)
	m, err := s.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: "Toyota", Country: "Japan"})
	require.NoError(t, err)
	car, err := s.svc.Car().Create(ctx, &models.Car{Model: "Camry", ManufacturerID: m.ID})
	require.NoError(t, err)
	s.login("admin")

	target := "/admin/taxi/car/" + id(car.ID) + "/change/"
	rec := s.get(target)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Toyota Japan")

	rec = s.post(target, url.Values{"model": {"Camry"}, "manufacturer": {id(m.ID)}, "drivers": {id(d.ID)}})
	assert.Equal(t, http.StatusFound, rec.Code)

	loaded, err := s.svc.Car().Get(ctx, car.ID)
	require.NoError(t, err)
	assert.True(t, loaded.HasDriver(d.ID))
}
