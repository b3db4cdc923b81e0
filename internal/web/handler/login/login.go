// Package login serves the username and password login form.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/web/handler"
	"github.com/rosterd/rosterd/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = handler.RootPath + "login"

	// TemplateName is the standalone login template.
	TemplateName = "login"
)

// Form is the login form.
type Form struct {
	Username string `form:"username" validate:"required,max=100"`
	Password string `form:"password" validate:"required"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	local *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Cfg == nil || deps.DB == nil {
		return errors.New("app or db is nil")
	}

	s.cfg = deps.Cfg
	s.local = auth.NewLocalProvider(deps.DB)

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, s.bind(nil))
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	if !s.cfg.Auth.LocalDB.Enabled {
		return c.Render(TemplateName, s.bind(ErrLocalAuthDisabled))
	}

	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return c.Render(TemplateName, s.bind(ErrInvalidFormData))
	}

	if err := handler.Validator.Struct(form); err != nil {
		return c.Render(TemplateName, s.bind(ErrInvalidFormData))
	}

	user, err := s.local.Authenticate(c.UserContext(), form.Username, form.Password)

	switch {
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
		log.Info().Str("username", form.Username).Msg("failed login attempt")
		return c.Render(TemplateName, s.bind(ErrInvalidCredentials))
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return c.Render(TemplateName, s.bind(ErrAccountDisabled))
	case err != nil:
		log.Error().Err(err).Msg("failed to authenticate user")
		return c.Render(TemplateName, s.bind(ErrInternalServerError))
	}

	if err = session.Login(c, s.cfg, *user); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Render(TemplateName, s.bind(ErrInternalServerError))
	}

	log.Info().Str("username", user.Username).Msg("user logged in")

	return c.Redirect(handler.DashboardPath)
}

func (s *Service) bind(err error) fiber.Map {
	m := fiber.Map{
		"Title":           s.cfg.Title,
		"LocalDBEnabled":  s.cfg.Auth.LocalDB.Enabled,
		"RegisterEnabled": s.cfg.Auth.LocalDB.Enabled && s.cfg.Auth.LocalDB.AllowRegister,
		"OIDCEnabled":     s.cfg.Auth.OIDC.Enabled,
	}

	if err != nil {
		m["Error"] = err.Error()
	}

	return m
}
