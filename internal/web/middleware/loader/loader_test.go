package loader_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/web/middleware/loader"
	"github.com/rosterd/rosterd/internal/web/request"
	"github.com/rosterd/rosterd/internal/web/webtest"
)

func TestLoaders(t *testing.T) {
	env := webtest.New(t)
	owner := env.User(t, "owner")
	g := env.Group(t, owner, "cs61a", models.CategoryClass)
	e := env.Event(t, g, owner, "Lab 1")

	other := env.Group(t, owner, "other", models.CategoryNonprofit)
	foreign := env.Event(t, other, owner, "Picnic")

	env.App.Get("/g/:group", loader.ForGroup(env.Deps, func(c *fiber.Ctx) error {
		can := c.Locals(request.LocalCan).(func(string) bool)

		return c.SendString(fmt.Sprintf("%s %t", request.Group(c).Name, can("create_event")))
	})...)
	env.App.Get("/g/:group/e/:event_id", loader.ForEvent(env.Deps, func(c *fiber.Ctx) error {
		can := c.Locals(request.LocalCanEvent).(func(string) bool)

		return c.SendString(fmt.Sprintf("%s %t", request.Event(c).Name, can("authorize")))
	})...)

	tests := []struct {
		name     string
		path     string
		want     int
		wantBody string
	}{
		{name: "group", path: "/g/cs61a", want: fiber.StatusOK, wantBody: "CS61A true"},
		{name: "group url is case insensitive", path: "/g/CS61A", want: fiber.StatusOK, wantBody: "CS61A true"},
		{name: "unknown group", path: "/g/nope", want: fiber.StatusNotFound},
		{name: "event", path: fmt.Sprintf("/g/cs61a/e/%d", e.ID), want: fiber.StatusOK, wantBody: "Lab 1 true"},
		{name: "event of another group", path: fmt.Sprintf("/g/cs61a/e/%d", foreign.ID), want: fiber.StatusNotFound},
		{name: "non numeric event", path: "/g/cs61a/e/abc", want: fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.Get(t, tt.path, owner)
			assert.Equal(t, tt.want, resp.StatusCode)

			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, webtest.Body(t, resp))
			}
		})
	}
}
