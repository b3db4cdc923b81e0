package group

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/rosterd/rosterd/internal/web/request"
	"github.com/rosterd/rosterd/internal/whitelist"
)

// WhitelistResponse is the body of the public whitelist endpoint.
type WhitelistResponse struct {
	Data []whitelist.Entry `json:"data"`
}

// Whitelist serves the parsed whitelist of the group to holders of the group's access token.
func (s *Service) Whitelist(c *fiber.Ctx) error {
	group := request.Group(c)

	token := c.Params("token")
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(group.AccessToken)) != 1 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid access token"})
	}

	entries, err := s.whitelist(c, group)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load whitelist"})
	}

	return c.JSON(WhitelistResponse{Data: entries})
}
