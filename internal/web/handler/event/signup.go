package event

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/membership"
	"github.com/rosterd/rosterd/internal/web/handler"
	"github.com/rosterd/rosterd/internal/web/handler/settings/form"
	"github.com/rosterd/rosterd/internal/web/navigation"
	"github.com/rosterd/rosterd/internal/web/request"
)

// SignupForm asks for a role when the event lets participants pick one.
func (s *Service) SignupForm(c *fiber.Ctx) error {
	return s.renderSignup(c, fiber.StatusOK, "")
}

// Signup signs the user up for the event.
func (s *Service) Signup(c *fiber.Ctx) error {
	group := request.Group(c)
	event := request.Event(c)

	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	sel, err := selection(c)
	if err != nil {
		return s.renderSignup(c, fiber.StatusBadRequest, "Invalid role")
	}

	signup, err := s.resolver.Signup(c.UserContext(), group, event, &user, sel)

	switch {
	case errors.Is(err, membership.ErrDuplicateActiveRecord):
		return c.Redirect(navigation.EventPath(group, event))
	case errors.Is(err, membership.ErrSignupsDisabled):
		return s.renderSignup(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, membership.ErrRoleRequired),
		errors.Is(err, membership.ErrRoleNotFound),
		errors.Is(err, membership.ErrUnauthorizedRoleChoice):
		return s.renderSignup(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		return handler.InternalError(c, err, "failed to sign up")
	}

	log.Info().Uint64("event_id", event.ID).Uint64("user_id", user.ID).Bool("waitlisted", signup.IsWaitlisted).
		Msg("user signed up")

	return c.Redirect(navigation.EventPath(group, event))
}

// Leave ends the signup of the user.
func (s *Service) Leave(c *fiber.Ctx) error {
	group := request.Group(c)
	event := request.Event(c)

	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	err := s.resolver.LeaveEvent(c.UserContext(), event, user.ID)

	switch {
	case errors.Is(err, membership.ErrLeaveDisabled):
		return handler.ErrorPage(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, membership.ErrNotActive):
		return handler.ErrorPage(c, fiber.StatusBadRequest, "You are not signed up for this event")
	case err != nil:
		return handler.InternalError(c, err, "failed to leave event")
	}

	log.Info().Uint64("event_id", event.ID).Uint64("user_id", user.ID).Msg("user left event")

	return c.Redirect(navigation.GroupPath(group))
}

func (s *Service) renderSignup(c *fiber.Ctx, status int, msg string) error {
	group := request.Group(c)
	event := request.Event(c)

	roles, err := s.resolver.RoleChoices(c.UserContext(), models.ScopeEvent, event.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to list roles")
	}

	return handler.Render(c, status, templateSignup, navigation.ForEvent("Sign up", "signup", group, event), fiber.Map{
		"Roles": roles,
		"Error": msg,
	})
}

// Settings renders the settings of the event.
func (s *Service) Settings(c *fiber.Ctx) error {
	return s.renderSettings(c, fiber.StatusOK, nil, false)
}

// SaveSettings stores the posted settings of the event.
func (s *Service) SaveSettings(c *fiber.Ctx) error {
	event := request.Event(c)

	options, err := s.settingOptions(c, event)
	if err != nil {
		return handler.InternalError(c, err, "failed to list roles")
	}

	invalid, err := form.Apply(c, s.db, models.SettingOwnerEvent, event.ID, options)
	if err != nil {
		return handler.InternalError(c, err, "failed to save settings")
	}

	if len(invalid) > 0 {
		return s.renderSettings(c, fiber.StatusBadRequest, invalid, false)
	}

	return s.renderSettings(c, fiber.StatusOK, nil, true)
}

func (s *Service) renderSettings(c *fiber.Ctx, status int, errs []string, saved bool) error {
	group := request.Group(c)
	event := request.Event(c)

	options, err := s.settingOptions(c, event)
	if err != nil {
		return handler.InternalError(c, err, "failed to list roles")
	}

	rows, err := form.Rows(c.UserContext(), s.db, models.SettingOwnerEvent, event.ID, options)
	if err != nil {
		return handler.InternalError(c, err, "failed to list settings")
	}

	nav := navigation.ForEvent("Settings", "settings", group, event)

	return handler.Render(c, status, templateSetting, nav, fiber.Map{
		"Rows":   rows,
		"Errors": errs,
		"Saved":  saved,
		"Action": navigation.EventPath(group, event) + "/settings",
	})
}

// settingOptions offers the active event roles for the role setting.
func (s *Service) settingOptions(c *fiber.Ctx, event *models.Event) (map[string][]string, error) {
	roles, err := s.resolver.Roles(c.UserContext(), models.ScopeEvent, event.ID)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}

	return map[string][]string{catalog.SettingRole: names}, nil
}
