// Package request holds the fiber.Locals keys shared by middlewares and handlers,
// so the current user, group and event are passed explicitly into every call.
package request

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rosterd/rosterd/internal/db/models"
)

const (
	// LocalCurrentUser holds the logged-in models.User.
	LocalCurrentUser = "CurrentUser"
	// LocalUserID holds the logged-in user id as uint64, used by the access log.
	LocalUserID = "user_id"
	// LocalGroup holds the *models.Group resolved from the :group route parameter.
	LocalGroup = "Group"
	// LocalEvent holds the *models.Event resolved from the :event_id route parameter.
	LocalEvent = "Event"
	// LocalCan holds a func(string) bool answering group permission checks in templates.
	LocalCan = "can"
	// LocalCanEvent holds a func(string) bool answering event permission checks in templates.
	LocalCanEvent = "canEvent"
)

// User returns the logged-in user, if any.
func User(c *fiber.Ctx) (models.User, bool) {
	u, ok := c.Locals(LocalCurrentUser).(models.User)
	if !ok || u.ID == 0 {
		return models.User{}, false
	}

	return u, true
}

// SetUser stores the logged-in user.
func SetUser(c *fiber.Ctx, u models.User) {
	c.Locals(LocalCurrentUser, u)
	c.Locals(LocalUserID, u.ID)
}

// Group returns the group of the current route.
func Group(c *fiber.Ctx) *models.Group {
	g, _ := c.Locals(LocalGroup).(*models.Group)
	return g
}

// Event returns the event of the current route.
func Event(c *fiber.Ctx) *models.Event {
	e, _ := c.Locals(LocalEvent).(*models.Event)
	return e
}
