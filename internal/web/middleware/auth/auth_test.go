package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/web/request"
	"github.com/rosterd/rosterd/internal/web/session"
)

func newTestApp() *fiber.App {
	session.Init(fibersession.New().Storage)

	app := fiber.New()
	app.Use(New(Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), "/public")
		},
		LoginPath:   "/login",
		HomePath:    "/dashboard",
		GuestPaths:  []string{"/login"},
		PublicPaths: []string{"/static"},
	}))

	handler := func(c *fiber.Ctx) error {
		if u, ok := request.User(c); ok {
			return c.SendString(u.Username)
		}

		return c.SendString("anonymous")
	}

	app.Get("/login", handler)
	app.Get("/dashboard", handler)
	app.Get("/static/app.css", handler)
	app.Get("/g/x/public", handler)

	return app
}

func TestMiddleware(t *testing.T) {
	app := newTestApp()
	require.NoError(t, session.NewData(models.User{ID: 5, Username: "ada"}).Write("valid", time.Minute))

	tests := []struct {
		name         string
		path         string
		cookie       string
		wantStatus   int
		wantLocation string
		wantBody     string
	}{
		{name: "anonymous protected", path: "/dashboard", wantStatus: fiber.StatusFound, wantLocation: "/login"},
		{name: "anonymous login", path: "/login", wantStatus: fiber.StatusOK, wantBody: "anonymous"},
		{name: "unknown session", path: "/dashboard", cookie: "stale", wantStatus: fiber.StatusFound, wantLocation: "/login"},
		{name: "unknown session on login", path: "/login", cookie: "stale", wantStatus: fiber.StatusOK},
		{name: "logged in", path: "/dashboard", cookie: "valid", wantStatus: fiber.StatusOK, wantBody: "ada"},
		{name: "logged in on login", path: "/login", cookie: "valid", wantStatus: fiber.StatusFound, wantLocation: "/dashboard"},
		{name: "public path", path: "/static/app.css", wantStatus: fiber.StatusOK, wantBody: "anonymous"},
		{name: "skipped", path: "/g/x/public", wantStatus: fiber.StatusOK, wantBody: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, resp.Header.Get(fiber.HeaderLocation))
			}

			if tt.wantBody != "" {
				body, errRead := io.ReadAll(resp.Body)
				require.NoError(t, errRead)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}
