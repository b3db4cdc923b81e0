package event

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rosterd/rosterd/internal/checkin"
	"github.com/rosterd/rosterd/internal/web/handler"
	"github.com/rosterd/rosterd/internal/web/navigation"
	"github.com/rosterd/rosterd/internal/web/request"
)

// CheckinForm asks for the authorization code of an authorizer present at the event.
func (s *Service) CheckinForm(c *fiber.Ctx) error {
	return s.renderCheckin(c, fiber.StatusOK, "", false)
}

// Checkin records the attendance of the user when the posted code authorizes it.
func (s *Service) Checkin(c *fiber.Ctx) error {
	event := request.Event(c)

	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	_, err := s.issuer.CheckIn(c.UserContext(), event, user.ID, c.FormValue("code"))

	switch {
	case errors.Is(err, checkin.ErrAuthorizationFailed):
		return s.renderCheckin(c, fiber.StatusForbidden, "Invalid authorization code", false)
	case errors.Is(err, checkin.ErrNotSignedUp),
		errors.Is(err, checkin.ErrWaitlisted),
		errors.Is(err, checkin.ErrCheckinLimit):
		return s.renderCheckin(c, fiber.StatusConflict, err.Error(), false)
	case err != nil:
		return handler.InternalError(c, err, "failed to check in")
	}

	log.Info().Uint64("event_id", event.ID).Uint64("user_id", user.ID).Msg("user checked in")

	return s.renderCheckin(c, fiber.StatusOK, "", true)
}

func (s *Service) renderCheckin(c *fiber.Ctx, status int, msg string, done bool) error {
	group := request.Group(c)
	event := request.Event(c)
	user, _ := request.User(c)

	count, err := s.issuer.Count(c.UserContext(), event.ID, user.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to count check-ins")
	}

	nav := navigation.ForEvent("Check in", "checkin", group, event)

	return handler.Render(c, status, templateCheckin, nav, fiber.Map{
		"Count":     count,
		"CheckedIn": done,
		"Error":     msg,
	})
}

// AuthorizeForm shows the current authorization code of the user.
func (s *Service) AuthorizeForm(c *fiber.Ctx) error {
	return s.renderAuthorize(c, fiber.StatusOK, "")
}

// Authorize derives a new authorization code from the posted seed. The length defaults to the
// configured code length.
func (s *Service) Authorize(c *fiber.Ctx) error {
	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	seed := c.FormValue("seed")
	if seed == "" {
		return s.renderAuthorize(c, fiber.StatusBadRequest, "Enter a seed to generate a code")
	}

	length := s.cfg.Checkin.CodeLength

	if raw := c.FormValue("length"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return s.renderAuthorize(c, fiber.StatusBadRequest, checkin.ErrInvalidCodeLength.Error())
		}

		length = n
	}

	_, err := s.issuer.Issue(c.UserContext(), user.ID, seed, length)
	if errors.Is(err, checkin.ErrInvalidCodeLength) {
		return s.renderAuthorize(c, fiber.StatusBadRequest, err.Error())
	}

	if err != nil {
		return handler.InternalError(c, err, "failed to issue code")
	}

	log.Info().Uint64("user_id", user.ID).Msg("authorization code issued")

	return s.renderAuthorize(c, fiber.StatusOK, "")
}

func (s *Service) renderAuthorize(c *fiber.Ctx, status int, msg string) error {
	group := request.Group(c)
	event := request.Event(c)
	user, _ := request.User(c)

	code, err := s.issuer.Current(c.UserContext(), user.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to load code")
	}

	nav := navigation.ForEvent("Authorize", "authorize", group, event)

	return handler.Render(c, status, templateAuthorize, nav, fiber.Map{
		"Code":          code,
		"DefaultLength": s.cfg.Checkin.CodeLength,
		"MaxLength":     checkin.MaxCodeLength,
		"Error":         msg,
	})
}
