// Package loader resolves the :group and :event_id route parameters into request locals.
package loader

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/provision"
	"github.com/rosterd/rosterd/internal/web/handler"
	"github.com/rosterd/rosterd/internal/web/request"
)

// Route parameter names.
const (
	ParamGroup = "group"
	ParamEvent = "event_id"
)

// Group loads the group named by the :group parameter, or renders 404.
func Group(svc *provision.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		group, err := svc.GroupByURL(c.UserContext(), c.Params(ParamGroup))
		if errors.Is(err, provision.ErrGroupNotFound) {
			return handler.ErrorPage(c, fiber.StatusNotFound, "No such group")
		}

		if err != nil {
			return handler.InternalError(c, err, "failed to load group")
		}

		c.Locals(request.LocalGroup, group)

		return c.Next()
	}
}

// Event loads the event of the :event_id parameter inside the loaded group, or renders 404.
func Event(svc *provision.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		group := request.Group(c)
		if group == nil {
			return handler.ErrorPage(c, fiber.StatusNotFound, "No such group")
		}

		id, err := strconv.ParseUint(c.Params(ParamEvent), 10, 64)
		if err != nil {
			return handler.ErrorPage(c, fiber.StatusNotFound, "No such event")
		}

		event, err := svc.Event(c.UserContext(), group.ID, id)
		if errors.Is(err, provision.ErrEventNotFound) {
			return handler.ErrorPage(c, fiber.StatusNotFound, "No such event")
		}

		if err != nil {
			return handler.InternalError(c, err, "failed to load event")
		}

		c.Locals(request.LocalEvent, event)

		return c.Next()
	}
}

// ForGroup returns the handlers every group route runs first, followed by h.
func ForGroup(deps *handler.Deps, h ...fiber.Handler) []fiber.Handler {
	chain := []fiber.Handler{Group(deps.Provision), auth.AddPermissionsToLocals(deps.Auth)}

	return append(chain, h...)
}

// ForEvent returns the handlers every event route runs first, followed by h.
func ForEvent(deps *handler.Deps, h ...fiber.Handler) []fiber.Handler {
	chain := []fiber.Handler{
		Group(deps.Provision),
		Event(deps.Provision),
		auth.AddPermissionsToLocals(deps.Auth),
	}

	return append(chain, h...)
}
