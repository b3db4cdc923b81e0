// Package webtest provides fixtures for handler tests: an in-memory database, a recording
// views engine and logged-in requests.
package webtest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/web/handler"
	authmiddleware "github.com/rosterd/rosterd/internal/web/middleware/auth"
	"github.com/rosterd/rosterd/internal/web/session"
)

// Views is a fiber views engine that records the last render and writes the template name,
// followed by the "Error" value if there is one.
type Views struct {
	mu       sync.Mutex
	template string
	data     fiber.Map
}

// Load implements fiber.Views.
func (*Views) Load() error { return nil }

// Render implements fiber.Views.
func (v *Views) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.template = name
	v.data, _ = data.(fiber.Map)

	_, _ = io.WriteString(w, name)

	if v.data != nil {
		if msg, ok := v.data["Error"].(string); ok && msg != "" {
			_, _ = io.WriteString(w, ": "+msg)
		}
	}

	return nil
}

// Template returns the name of the last rendered template.
func (v *Views) Template() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.template
}

// Data returns the bind data of the last render.
func (v *Views) Data() fiber.Map {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.data
}

// NewDB creates an in-memory SQLite database with all tables on a single connection.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))

	return db
}

// NewConfig returns a config with local login and registration enabled.
func NewConfig() *config.Config {
	return &config.Config{
		DevMode: true,
		Webserver: config.Webserver{
			URL:        "http://localhost",
			Port:       3000,
			Argon2Salt: "test-salt",
			Session:    config.Session{ExpiryTime: time.Minute},
		},
		Auth: config.Auth{
			LocalDB: config.LocalDBAuth{Enabled: true, AllowRegister: true},
		},
		Checkin: config.Checkin{CodeLength: 6},
	}
}

// Env bundles what a handler test needs.
type Env struct {
	App   *fiber.App
	Views *Views
	Deps  *handler.Deps
	DB    *gorm.DB
}

// New creates a fiber app behind the authentication middleware with a fresh database and
// session store. Handlers are registered by the caller.
func New(t *testing.T) *Env {
	t.Helper()

	session.Init(fibersession.New().Storage)

	db := NewDB(t)
	views := &Views{}

	app := fiber.New(fiber.Config{Views: views, PassLocalsToViews: true})
	app.Use(authmiddleware.New(authmiddleware.Config{
		LoginPath:   "/login",
		HomePath:    handler.DashboardPath,
		GuestPaths:  []string{"/login", "/register"},
		PublicPaths: []string{"/logout", "/auth/"},
		Next: func(c *fiber.Ctx) bool {
			return strings.Contains(c.Path(), "/whitelist/")
		},
	}))

	return &Env{App: app, Views: views, Deps: handler.NewDeps(NewConfig(), db), DB: db}
}

// User creates an active local user with password "password".
func (e *Env) User(t *testing.T, name string) *models.User {
	t.Helper()

	u := &models.User{
		Active:     true,
		Username:   name,
		Email:      name + "@example.com",
		Password:   models.HashPassword("password"),
		AuthSource: models.AuthSourceLocal,
	}
	require.NoError(t, e.DB.Create(u).Error)

	return u
}

// Group creates a group of category owned by owner.
func (e *Env) Group(t *testing.T, owner *models.User, url string, category models.Category) *models.Group {
	t.Helper()

	g := &models.Group{Name: strings.ToUpper(url), URL: url, Category: category}
	require.NoError(t, e.Deps.Provision.CreateGroup(context.Background(), g, owner.ID))

	return g
}

// Event creates an event of group owned by owner.
func (e *Env) Event(t *testing.T, group *models.Group, owner *models.User, name string) *models.Event {
	t.Helper()

	ev := &models.Event{Name: name}
	require.NoError(t, e.Deps.Provision.CreateEvent(context.Background(), group, ev, owner.ID))

	return ev
}

// Cookie returns a session cookie for user.
func Cookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, session.NewData(*user).Write(sessionID, time.Minute))

	return &http.Cookie{Name: session.CookieName, Value: sessionID}
}

// Get performs a GET request as user; a nil user is anonymous.
func (e *Env) Get(t *testing.T, path string, user *models.User) *http.Response {
	t.Helper()

	return e.Do(t, httptest.NewRequest(fiber.MethodGet, path, nil), user)
}

// Post performs a form POST request as user.
func (e *Env) Post(t *testing.T, path string, form url.Values, user *models.User) *http.Response {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	return e.Do(t, req, user)
}

// Do performs req as user.
func (e *Env) Do(t *testing.T, req *http.Request, user *models.User) *http.Response {
	t.Helper()

	if user != nil {
		req.AddCookie(Cookie(t, user))
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	return resp
}

// Body reads the response body.
func Body(t *testing.T, resp *http.Response) string {
	t.Helper()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}
