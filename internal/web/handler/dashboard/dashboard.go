// Package dashboard lists the groups of the logged-in user and creates new groups.
package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/membership"
	"github.com/rosterd/rosterd/internal/provision"
	"github.com/rosterd/rosterd/internal/web/handler"
	"github.com/rosterd/rosterd/internal/web/navigation"
	"github.com/rosterd/rosterd/internal/web/request"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.DashboardPath

	// NewGroupPath is the create group form.
	NewGroupPath = Path + "/g/new"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	// NewGroupTemplate is the create group template.
	NewGroupTemplate = "dashboard/new_group"
)

// GroupForm is the create group form.
type GroupForm struct {
	Name        string `form:"name"        validate:"required,max=100"`
	URL         string `form:"url"         validate:"required,max=100,hostname_rfc1123"`
	Description string `form:"description" validate:"max=2000"`
	Category    string `form:"category"    validate:"required,oneof=class nonprofit"`
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	resolver  *membership.Resolver
	provision *provision.Service
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.DB == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.resolver = deps.Resolver
	s.provision = deps.Provision

	app.Get(Path, s.Get)
	app.Get(NewGroupPath, s.NewGroup)
	app.Post(NewGroupPath, s.CreateGroup)

	return nil
}

// Get lists the active memberships of the user.
func (s *Service) Get(c *fiber.Ctx) error {
	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	memberships, err := s.resolver.MembershipsOf(c.UserContext(), user.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to list memberships")
	}

	nav := navigation.ForDashboard("Dashboard", navigation.SectionDashboard)

	return handler.Render(c, fiber.StatusOK, TemplateName, nav, fiber.Map{
		"Memberships": memberships,
	})
}

// NewGroup renders the create group form.
func (s *Service) NewGroup(c *fiber.Ctx) error {
	return s.renderForm(c, fiber.StatusOK, &GroupForm{Category: string(models.CategoryClass)}, nil)
}

// CreateGroup creates the group and makes the user its owner.
func (s *Service) CreateGroup(c *fiber.Ctx) error {
	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	form := new(GroupForm)
	if err := c.BodyParser(form); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, form, []string{"Invalid form data"})
	}

	if err := handler.Validator.Struct(form); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, form, handler.ValidationMessages(err))
	}

	group := &models.Group{
		Name:        form.Name,
		URL:         form.URL,
		Description: form.Description,
		Category:    models.Category(form.Category),
	}

	err := s.provision.CreateGroup(c.UserContext(), group, user.ID)

	switch {
	case errors.Is(err, provision.ErrGroupURLTaken):
		return s.renderForm(c, fiber.StatusConflict, form, []string{err.Error()})
	case errors.Is(err, catalog.ErrUnknownCategory):
		return s.renderForm(c, fiber.StatusBadRequest, form, []string{err.Error()})
	case err != nil:
		return handler.InternalError(c, err, "failed to create group")
	}

	log.Info().Str("group", group.URL).Uint64("user_id", user.ID).Msg("group created")

	return c.Redirect(navigation.GroupPath(group))
}

func (s *Service) renderForm(c *fiber.Ctx, status int, form *GroupForm, errs []string) error {
	nav := navigation.ForDashboard("New Group", "new-group").
		AddBreadcrumb("New Group", NewGroupPath, true)

	return handler.Render(c, status, NewGroupTemplate, nav, fiber.Map{
		"Form":       form,
		"Categories": catalog.Categories(),
		"Errors":     errs,
	})
}
