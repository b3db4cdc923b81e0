package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"

	"github.com/rosterd/rosterd/internal/web/navigation"
)

// Validator checks form structs tagged with `validate`.
var Validator = validator.New(validator.WithRequiredStructEnabled())

// Render renders a page template inside the base layout.
func Render(c *fiber.Ctx, status int, template string, nav *navigation.Context, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}

	data["Navigation"] = nav

	return c.Status(status).Render(template, data, BaseLayout)
}

// ErrorPage renders the error template with message.
func ErrorPage(c *fiber.Ctx, status int, message string) error {
	nav := navigation.NewContext(utils.StatusMessage(status), "", "")

	return Render(c, status, ErrorTemplate, nav, fiber.Map{"Error": message})
}

// InternalError logs err and renders a generic 500 page.
func InternalError(c *fiber.Ctx, err error, msg string) error {
	log.Error().Err(err).Str("path", c.Path()).Msg(msg)

	return ErrorPage(c, fiber.StatusInternalServerError, "Internal server error")
}

// ValidationMessages turns validator errors into form messages.
func ValidationMessages(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	out := make([]string, len(validationErrors))
	for i, ve := range validationErrors {
		out[i] = "Field '" + ve.Field() + "' failed validation tag '" + ve.Tag() + "'"
	}

	return out
}

// Checked reports whether a checkbox form value is set.
func Checked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
