package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rosterd/rosterd/internal/web/request"
	"github.com/rosterd/rosterd/internal/web/session"
)

// Config configures the authentication middleware.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	Next func(c *fiber.Ctx) bool

	// LoginPath is where anonymous requests are redirected to.
	LoginPath string

	// HomePath is where logged-in users are sent when they open a guest page.
	HomePath string

	// GuestPaths are only for anonymous users, such as the login and register pages.
	GuestPaths []string

	// PublicPaths are served without a session and without redirects.
	PublicPaths []string
}

// New creates the authentication middleware.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		path := strings.ToLower(c.Path())
		if hasPrefix(path, cfg.PublicPaths) {
			return c.Next()
		}

		isGuestPage := hasPrefix(path, cfg.GuestPaths)

		// get session cookie
		loginCookie := c.Cookies(session.CookieName)

		// if no session cookie, redirect to login page
		if loginCookie == "" {
			if isGuestPage {
				return c.Next()
			}

			return c.Redirect(cfg.LoginPath)
		}

		// check session validity
		sessData := new(session.Data)
		if err := sessData.Read(loginCookie); err != nil || sessData.User.ID == 0 {
			// If we're already on the login page, don't redirect (would cause loop)
			if isGuestPage {
				return c.Next()
			}

			return c.Redirect(cfg.LoginPath)
		}

		request.SetUser(c, sessData.User)

		if isGuestPage {
			return c.Redirect(cfg.HomePath)
		}

		return c.Next()
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
