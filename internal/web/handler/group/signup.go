package group

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/membership"
	"github.com/rosterd/rosterd/internal/web/handler"
	"github.com/rosterd/rosterd/internal/web/navigation"
	"github.com/rosterd/rosterd/internal/web/request"
)

// SignupForm asks for a role when the group lets new members pick one.
func (s *Service) SignupForm(c *fiber.Ctx) error {
	return s.renderSignup(c, fiber.StatusOK, "")
}

// Signup makes the user a member of the group.
func (s *Service) Signup(c *fiber.Ctx) error {
	group := request.Group(c)

	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	sel, err := selection(c)
	if err != nil {
		return s.renderSignup(c, fiber.StatusBadRequest, "Invalid role")
	}

	m, err := s.resolver.Join(c.UserContext(), group, &user, sel)

	switch {
	case errors.Is(err, membership.ErrDuplicateActiveRecord):
		return c.Redirect(navigation.GroupPath(group))
	case errors.Is(err, membership.ErrRoleRequired),
		errors.Is(err, membership.ErrRoleNotFound),
		errors.Is(err, membership.ErrUnauthorizedRoleChoice):
		return s.renderSignup(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		return handler.InternalError(c, err, "failed to join group")
	}

	log.Info().Str("group", group.URL).Uint64("user_id", user.ID).Uint64("role_id", m.RoleID).
		Msg("user joined group")

	return c.Redirect(navigation.GroupPath(group))
}

// Leave ends the membership of the user.
func (s *Service) Leave(c *fiber.Ctx) error {
	group := request.Group(c)

	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	err := s.resolver.Leave(c.UserContext(), group, user.ID)
	if errors.Is(err, membership.ErrNotActive) {
		return handler.ErrorPage(c, fiber.StatusBadRequest, "You are not a member of this group")
	}

	if err != nil {
		return handler.InternalError(c, err, "failed to leave group")
	}

	log.Info().Str("group", group.URL).Uint64("user_id", user.ID).Msg("user left group")

	return c.Redirect(handler.DashboardPath)
}

func (s *Service) renderSignup(c *fiber.Ctx, status int, msg string) error {
	group := request.Group(c)

	roles, err := s.resolver.RoleChoices(c.UserContext(), models.ScopeGroup, group.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to list roles")
	}

	return handler.Render(c, status, templateSignup, navigation.ForGroup("Join", "signup", group), fiber.Map{
		"Roles": roles,
		"Error": msg,
	})
}

// selection reads the optional role_id form field.
func selection(c *fiber.Ctx) (membership.Selection, error) {
	raw := c.FormValue("role_id")
	if raw == "" {
		return membership.Selection{}, nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return membership.Selection{}, err
	}

	return membership.Selection{RoleID: id}, nil
}
