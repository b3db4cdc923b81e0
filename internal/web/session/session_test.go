package session

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/db/models"
)

func newTestConfig() *config.Config {
	return &config.Config{
		DevMode:   true,
		Webserver: config.Webserver{Session: config.Session{ExpiryTime: time.Minute}},
	}
}

func TestDataRoundTrip(t *testing.T) {
	Init(session.New().Storage)

	d := NewData(models.User{ID: 7, Username: "ada", Password: "hash"})
	assert.Empty(t, d.User.Password)
	require.NoError(t, d.Write("sid", time.Minute))

	var got Data
	require.NoError(t, got.Read("sid"))
	assert.Equal(t, uint64(7), got.User.ID)
	assert.Equal(t, "ada", got.User.Username)

	require.ErrorIs(t, new(Data).Read("missing"), ErrNoSession)
}

func TestLoginLogout(t *testing.T) {
	Init(session.New().Storage)
	cfg := newTestConfig()

	app := fiber.New()
	app.Get("/in", func(c *fiber.Ctx) error {
		return Login(c, cfg, models.User{ID: 3, Username: "bob"})
	})
	app.Get("/out", func(c *fiber.Ctx) error {
		return Logout(c, cfg)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/in", nil))
	require.NoError(t, err)

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, 60, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)

	var d Data
	require.NoError(t, d.Read(cookies[0].Value))
	assert.Equal(t, uint64(3), d.User.ID)

	req := httptest.NewRequest(fiber.MethodGet, "/out", nil)
	req.AddCookie(cookies[0])

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Len(t, resp.Cookies(), 1)
	assert.Empty(t, resp.Cookies()[0].Value)

	require.ErrorIs(t, new(Data).Read(cookies[0].Value), ErrNoSession)
}
