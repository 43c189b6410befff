package web

import (
	"context"
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
	"taxipark/pkg/web/middleware"
	"taxipark/service"
	"taxipark/storage"
	"taxipark/storage/sqlite"
)

const testPassword = "s3cret-pass"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type testApp struct {
	t      *testing.T
	router *gin.Engine
	svc    service.IServiceManager
	store  storage.IStorage
	cookie *http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "web.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	svc := service.New(store, logger.Nop(), service.Options{
		PageSize:   5,
		SecretKey:  "test-secret",
		SessionTTL: time.Hour,
	})
	router, err := NewRouter(svc, logger.Nop(), Options{Metrics: middleware.NewMetrics("taxipark_test")})
	require.NoError(t, err)

	return &testApp{t: t, router: router, svc: svc, store: store}
}

func (a *testApp) createDriver(username, license string, staff bool) *models.Driver {
	a.t.Helper()
	d, err := a.svc.Driver().Create(context.Background(), &models.Driver{
		Username:      username,
		FirstName:     "First",
		LastName:      "Last",
		LicenseNumber: license,
		IsActive:      true,
		IsStaff:       staff,
	}, testPassword)
	require.NoError(a.t, err)
	return d
}

// login signs in as username and keeps the session cookie for later requests.
func (a *testApp) login(username string) {
	a.t.Helper()
	rec := a.post("/accounts/login/", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(a.t, http.StatusFound, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			a.cookie = c
		}
	}
	require.NotNil(a.t, a.cookie, "session cookie not set")
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(target string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (a *testApp) post(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func TestLoginRequired(t *testing.T) {
	app := newTestApp(t)

	paths := []string{
		"/",
		"/manufacturers/",
		"/manufacturers/create/",
		"/manufacturers/1/update/",
		"/manufacturers/1/delete/",
		"/cars/",
		"/cars/1/",
		"/cars/create/",
		"/cars/1/update/",
		"/cars/1/delete/",
		"/cars/1/toggle-assign/",
		"/drivers/",
		"/drivers/1/",
		"/drivers/create/",
		"/drivers/1/update/",
		"/drivers/1/delete/",
		"/admin/",
		"/admin/taxi/car/",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			rec := app.get(p)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/accounts/login/?next="+url.QueryEscape(p), rec.Header().Get("Location"))
		})
	}
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	app := newTestApp(t)
	app.cookie = &http.Cookie{Name: middleware.SessionCookie, Value: "forged"}

	rec := app.get("/")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	app.createDriver("driver1", "ABC12345", false)

	rec := app.post("/accounts/login/", url.Values{"username": {"driver1"}, "password": {"wrong-pass"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a correct username and password.")

	rec = app.post("/accounts/login/?next=/cars/", url.Values{
		"username": {"driver1"},
		"password": {testPassword},
		"next":     {"/cars/"},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/cars/", rec.Header().Get("Location"))

	rec = app.post("/accounts/login/", url.Values{
		"username": {"driver1"},
		"password": {testPassword},
		"next":     {"//evil.example.com/"},
	})
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	app.createDriver("driver1", "ABC12345", false)
	app.login("driver1")

	require.Equal(t, http.StatusOK, app.get("/").Code)

	rec := app.post("/accounts/logout/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logged out")

	assert.Equal(t, http.StatusFound, app.get("/").Code)
}

func TestIndexCountsAndVisits(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.createDriver("driver1", "ABC12345", false)
	app.createDriver("driver2", "ABC12346", false)

	m, err := app.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: "Toyota", Country: "Japan"})
	require.NoError(t, err)
	for _, model := range []string{"Camry", "Corolla", "Prius"} {
		_, err := app.svc.Car().Create(ctx, &models.Car{Model: model, ManufacturerID: m.ID})
		require.NoError(t, err)
	}

	app.login("driver1")

	rec := app.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>Drivers:</strong> 2")
	assert.Contains(t, body, "<strong>Cars:</strong> 3")
	assert.Contains(t, body, "<strong>Manufacturers:</strong> 1")
	assert.Contains(t, body, "You have visited this page 1 time.")

	rec = app.get("/")
	assert.Contains(t, rec.Body.String(), "You have visited this page 2 times.")
}

func TestListSearch(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.createDriver("alice", "ABC12345", false)
	app.createDriver("bob", "ABC12346", false)

	bmw, err := app.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: "BMW", Country: "Germany"})
	require.NoError(t, err)
	_, err = app.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: "Audi", Country: "Germany"})
	require.NoError(t, err)
	_, err = app.svc.Car().Create(ctx, &models.Car{Model: "X5", ManufacturerID: bmw.ID})
	require.NoError(t, err)
	_, err = app.svc.Car().Create(ctx, &models.Car{Model: "M3", ManufacturerID: bmw.ID})
	require.NoError(t, err)

	app.login("alice")

	tests := []struct {
		name    string
		target  string
		present []string
		absent  []string
	}{
		{"manufacturers filtered", "/manufacturers/?name=bm", []string{"BMW"}, []string{"Audi"}},
		{"manufacturers unfiltered", "/manufacturers/?name=", []string{"BMW", "Audi"}, nil},
		{"cars filtered", "/cars/?model=x", []string{"X5"}, []string{"M3"}},
		{"drivers filtered", "/drivers/?username=LI", []string{"alice (Me)"}, []string{"bob"}},
		{"no match", "/manufacturers/?name=zzz", []string{"There are no manufacturers"}, []string{"BMW"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.get(tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			for _, s := range tt.present {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestPagination(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.createDriver("driver1", "ABC12345", false)
	for _, name := range []string{"Audi", "BMW", "Citroen", "Dacia", "Ford", "GMC"} {
		_, err := app.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: name, Country: "X"})
		require.NoError(t, err)
	}
	app.login("driver1")

	rec := app.get("/manufacturers/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "GMC")
	assert.Contains(t, rec.Body.String(), `href="?page=2"`)

	rec = app.get("/manufacturers/?page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GMC")

	assert.Equal(t, http.StatusNotFound, app.get("/manufacturers/?page=3").Code)
	assert.Equal(t, http.StatusNotFound, app.get("/manufacturers/?page=abc").Code)
	assert.Equal(t, http.StatusOK, app.get("/cars/?page=1").Code)
}

func TestToggleAssign(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	d := app.createDriver("driver1", "ABC12345", false)
	m, err := app.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: "Toyota", Country: "Japan"})
	require.NoError(t, err)
	car, err := app.svc.Car().Create(ctx, &models.Car{Model: "Camry", ManufacturerID: m.ID})
	require.NoError(t, err)
	app.login("driver1")

	target := "/cars/" + itoa(car.ID) + "/toggle-assign/"

	rec := app.get(target)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/cars/"+itoa(car.ID)+"/", rec.Header().Get("Location"))
	assigned, err := app.store.Car().HasDriver(ctx, car.ID, d.ID)
	require.NoError(t, err)
	assert.True(t, assigned)

	detail := app.get("/cars/" + itoa(car.ID) + "/")
	assert.Contains(t, detail.Body.String(), "Delete me from this car")

	rec = app.post(target, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assigned, err = app.store.Car().HasDriver(ctx, car.ID, d.ID)
	require.NoError(t, err)
	assert.False(t, assigned)

	assert.Equal(t, http.StatusNotFound, app.get("/cars/999/toggle-assign/").Code)
}

func TestManufacturerForms(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.createDriver("driver1", "ABC12345", false)
	app.login("driver1")

	rec := app.post("/manufacturers/create/", url.Values{"name": {""}, "country": {"Japan"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required.")

	rec = app.post("/manufacturers/create/", url.Values{"name": {"Toyota"}, "country": {"Japan"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/manufacturers/", rec.Header().Get("Location"))

	rec = app.post("/manufacturers/create/", url.Values{"name": {"Toyota"}, "country": {"Japan"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Manufacturer with this Name already exists.")

	list, err := app.svc.Manufacturer().All(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := itoa(list[0].ID)

	rec = app.get("/manufacturers/" + id + "/update/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Toyota"`)

	rec = app.post("/manufacturers/"+id+"/update/", url.Values{"name": {"Toyota"}, "country": {"Japan!"}})
	assert.Equal(t, http.StatusFound, rec.Code)

	assert.Equal(t, http.StatusOK, app.get("/manufacturers/"+id+"/delete/").Code)
	rec = app.post("/manufacturers/"+id+"/delete/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/manufacturers/", rec.Header().Get("Location"))

	_, err = app.svc.Manufacturer().Get(ctx, list[0].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCarForms(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	d := app.createDriver("driver1", "ABC12345", false)
	m, err := app.svc.Manufacturer().Create(ctx, &models.Manufacturer{Name: "Toyota", Country: "Japan"})
	require.NoError(t, err)
	app.login("driver1")

	rec := app.get("/cars/create/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Toyota Japan")

	rec = app.post("/cars/create/", url.Values{"model": {"Camry"}, "manufacturer": {"999"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Select a valid choice.")

	rec = app.post("/cars/create/", url.Values{
		"model":        {"Camry"},
		"manufacturer": {itoa(m.ID)},
		"drivers":      {itoa(d.ID)},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/cars/", rec.Header().Get("Location"))

	cars, err := app.svc.Car().All(ctx)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	car, err := app.svc.Car().Get(ctx, cars[0].ID)
	require.NoError(t, err)
	assert.True(t, car.HasDriver(d.ID))

	rec = app.post("/cars/"+itoa(car.ID)+"/update/", url.Values{"model": {"Camry Hybrid"}, "manufacturer": {itoa(m.ID)}})
	assert.Equal(t, http.StatusFound, rec.Code)
	car, err = app.svc.Car().Get(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camry Hybrid", car.Model)
	assert.Empty(t, car.Drivers)

	assert.Equal(t, http.StatusNotFound, app.get("/cars/999/").Code)
	assert.Equal(t, http.StatusNotFound, app.get("/cars/abc/").Code)

	rec = app.post("/cars/"+itoa(car.ID)+"/delete/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, app.get("/cars/"+itoa(car.ID)+"/").Code)
}

func TestDriverForms(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.createDriver("driver1", "ABC12345", false)
	app.login("driver1")

	valid := url.Values{
		"username":       {"newbie"},
		"password1":      {"another-pass"},
		"password2":      {"another-pass"},
		"first_name":     {"New"},
		"last_name":      {"Driver"},
		"license_number": {"XYZ54321"},
	}

	bad := url.Values{}
	for k, v := range valid {
		bad[k] = v
	}
	bad.Set("license_number", "XYZ5432")
	rec := app.post("/drivers/create/", bad)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "License number should consist of 8 characters.")

	rec = app.post("/drivers/create/", valid)
	require.Equal(t, http.StatusFound, rec.Code)
	created, err := app.store.Driver().GetByUsername(ctx, "newbie")
	require.NoError(t, err)
	assert.Equal(t, "/drivers/"+itoa(created.ID)+"/", rec.Header().Get("Location"))

	rec = app.post("/drivers/create/", valid)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")

	detail := app.get("/drivers/" + itoa(created.ID) + "/")
	assert.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), "XYZ54321")

	target := "/drivers/" + itoa(created.ID) + "/update/"
	rec = app.post(target, url.Values{"license_number": {"xyz54321"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "First 3 characters should be uppercase letters.")

	rec = app.post(target, url.Values{"license_number": {"ABC12345"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Driver with this License number already exists.")

	rec = app.post(target, url.Values{"license_number": {"QWE11111"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/drivers/"+itoa(created.ID)+"/", rec.Header().Get("Location"))

	rec = app.post("/drivers/"+itoa(created.ID)+"/delete/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/drivers/", rec.Header().Get("Location"))
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)
	rec := app.get("/nowhere/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestStaticAssets(t *testing.T) {
	app := newTestApp(t)
	rec := app.get("/static/css/styles.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/cars/", safeNext("/cars/"))
	assert.Equal(t, "/", safeNext(""))
	assert.Equal(t, "/", safeNext("https://example.com/"))
	assert.Equal(t, "/", safeNext("//example.com/"))
	assert.Equal(t, "/", safeNext(`/\example.com`))
}

func TestPagerURLKeepsSearch(t *testing.T) {
	p := newPager(models.NewPage(1, 5, 12), map[string]string{"model": "a b"})
	assert.Equal(t, "?model=a+b&page=2", p.URL(2))

	p = newPager(models.NewPage(1, 5, 12), map[string]string{"model": ""})
	assert.Equal(t, "?page=2", p.URL(2))
}

func TestRendererLoadsAllPages(t *testing.T) {
	app := newTestApp(t)
	views, ok := app.router.HTMLRender.(*renderer)
	require.True(t, ok)
	assert.Contains(t, views.names(), "index.html")
	assert.Contains(t, views.names(), "admin/change_list.html")
}

func (r *renderer) names() []string {
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	return names
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
