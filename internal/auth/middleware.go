package auth

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/web/request"
)

const forbiddenMsg = "Forbidden: You don't have permission to access this resource"

// RequireGroupPermission creates Fiber middleware that requires perm in the group of the route.
// It must run after the group has been loaded into the request locals.
func RequireGroupPermission(authService *Service, perm Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		group := request.Group(c)
		if group == nil {
			return fiber.ErrNotFound
		}

		return requirePermission(c, authService, models.ScopeGroup, group.ID, perm)
	}
}

// RequireEventPermission creates Fiber middleware that requires perm in the event of the route.
func RequireEventPermission(authService *Service, perm Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := request.Event(c)
		if event == nil {
			return fiber.ErrNotFound
		}

		return requirePermission(c, authService, models.ScopeEvent, event.ID, perm)
	}
}

func requirePermission(c *fiber.Ctx, authService *Service, scope models.Scope, ownerID uint64, perm Permission) error {
	user, ok := request.User(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	allowed, err := authService.Can(c.UserContext(), scope, ownerID, user.ID, perm)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Str("scope", string(scope)).
			Uint64("owner_id", ownerID).Str("permission", string(perm)).
			Msg("failed to check permission")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	if !allowed {
		log.Warn().Uint64("user_id", user.ID).Str("scope", string(scope)).
			Uint64("owner_id", ownerID).Str("permission", string(perm)).
			Msg("user lacks required permission")

		return c.Status(fiber.StatusForbidden).SendString(forbiddenMsg)
	}

	return c.Next()
}

// AddPermissionsToLocals adds permission lookups for the group and event of the route to
// fiber.Locals, so templates can render links conditionally with {{if call .can "create_event"}}.
func AddPermissionsToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := request.User(c)
		if !ok {
			return c.Next()
		}

		if group := request.Group(c); group != nil {
			c.Locals(request.LocalCan, lookupFunc(c, authService, models.ScopeGroup, group.ID, user.ID))
		}

		if event := request.Event(c); event != nil {
			c.Locals(request.LocalCanEvent, lookupFunc(c, authService, models.ScopeEvent, event.ID, user.ID))
		}

		return c.Next()
	}
}

func lookupFunc(
	c *fiber.Ctx,
	authService *Service,
	scope models.Scope,
	ownerID, userID uint64,
) func(string) bool {
	granted, err := authService.GrantedPermissions(c.UserContext(), scope, ownerID, userID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Str("scope", string(scope)).
			Msg("failed to get user permissions")
	}

	return func(perm string) bool {
		return slices.Contains(granted, Permission(perm))
	}
}
