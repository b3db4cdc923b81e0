// Package register serves the self registration form for local accounts.
package register

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
	// Path is the path to the registration page.
	Path = handler.RootPath + "register"

	// TemplateName is the standalone registration template.
	TemplateName = "register"
)

// Form is the registration form.
type Form struct {
	Username string `form:"username" validate:"required,min=3,max=100,alphanum"`
	Email    string `form:"email"    validate:"required,email,max=255"`
	Name     string `form:"name"     validate:"max=200"`
	Password string `form:"password" validate:"required,min=8,max=128"`
	Confirm  string `form:"confirm"  validate:"required,eqfield=Password"`
}

// Service is the registration handler service.
type Service struct {
	handler.Service
	cfg   *config.Config
	local *auth.LocalProvider
}

// Handler is the registration handler.
var Handler = Service{}

// Init registers the routes if local registration is allowed.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Cfg == nil || deps.DB == nil {
		return errors.New("app or db is nil")
	}

	s.cfg = deps.Cfg
	s.local = auth.NewLocalProvider(deps.DB)

	if !s.cfg.Auth.LocalDB.Enabled || !s.cfg.Auth.LocalDB.AllowRegister {
		log.Info().Msg("self registration is disabled")
		return nil
	}

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get renders the registration form.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, fiber.Map{"Title": s.cfg.Title, "Form": Form{}})
}

// Post creates the account and logs the user in.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return s.renderError(c, fiber.StatusBadRequest, form, []string{"Invalid form data"})
	}

	if err := handler.Validator.Struct(form); err != nil {
		return s.renderError(c, fiber.StatusBadRequest, form, handler.ValidationMessages(err))
	}

	user, err := s.local.CreateUser(c.UserContext(), form.Username, form.Email, form.Password, form.Name)
	if errors.Is(err, auth.ErrUserNameOrEmailExists) {
		return s.renderError(c, fiber.StatusConflict, form, []string{err.Error()})
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return s.renderError(c, fiber.StatusInternalServerError, form, []string{"Internal server error"})
	}

	log.Info().Str("username", user.Username).Msg("user registered")

	if err = session.Login(c, s.cfg, *user); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Redirect(handler.RootPath + "login")
	}

	return c.Redirect(handler.DashboardPath)
}

func (s *Service) renderError(c *fiber.Ctx, status int, form *Form, msgs []string) error {
	form.Password = ""
	form.Confirm = ""

	return c.Status(status).Render(TemplateName, fiber.Map{
		"Title":  s.cfg.Title,
		"Form":   form,
		"Errors": msgs,
	})
}
