// Package event serves the pages of an event: creation, home, editing, settings, signing up and
// leaving, check-in and the authorization code of authorizers.
package event

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/checkin"
	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/membership"
	"github.com/rosterd/rosterd/internal/provision"
	"github.com/rosterd/rosterd/internal/web/handler"
	"github.com/rosterd/rosterd/internal/web/middleware/loader"
	"github.com/rosterd/rosterd/internal/web/navigation"
	"github.com/rosterd/rosterd/internal/web/request"
)

const (
	// GroupPath is the prefix of the event routes of a group.
	GroupPath = handler.RootPath + "g/:" + loader.ParamGroup + "/e"
	// Path is the route prefix of all pages of one event.
	Path = GroupPath + "/:" + loader.ParamEvent

	// TimeLayout is the layout of datetime-local inputs.
	TimeLayout = "2006-01-02T15:04"

	templateNew       = "event/new"
	templateHome      = "event/home"
	templateEdit      = "event/edit"
	templateSignup    = "event/signup"
	templateCheckin   = "event/checkin"
	templateAuthorize = "event/authorize"
	templateSetting   = "settings"
)

// Form is the create and edit event form.
type Form struct {
	Name        string `form:"name"        validate:"required,max=100"`
	Description string `form:"description" validate:"max=2000"`
	Start       string `form:"start"       validate:"required,datetime=2006-01-02T15:04"`
	End         string `form:"end"         validate:"required,datetime=2006-01-02T15:04"`
}

// Times parses start and end. The end must not be before the start.
func (f *Form) Times() (time.Time, time.Time, error) {
	start, err := time.Parse(TimeLayout, f.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end, err := time.Parse(TimeLayout, f.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrEndBeforeStart
	}

	return start, end, nil
}

// ErrEndBeforeStart is returned for an event that ends before it starts.
var ErrEndBeforeStart = errors.New("event cannot end before it starts")

// Service is the event handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	resolver  *membership.Resolver
	provision *provision.Service
	issuer    *checkin.Issuer
}

// Handler is the event handler.
var Handler = Service{}

// Init registers the event routes. The create route comes first so "new" is not taken for an id.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.DB == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = deps.Cfg
	s.db = deps.DB
	s.resolver = deps.Resolver
	s.provision = deps.Provision
	s.issuer = deps.Issuer

	createEvent := auth.RequireGroupPermission(deps.Auth, auth.PermCreateEvent)
	editSettings := auth.RequireGroupPermission(deps.Auth, auth.PermEditSettings)
	authorize := auth.RequireEventPermission(deps.Auth, auth.PermAuthorize)

	app.Get(GroupPath+"/new", loader.ForGroup(deps, createEvent, s.New)...)
	app.Post(GroupPath+"/new", loader.ForGroup(deps, createEvent, s.Create)...)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, loader.ForEvent(deps, s.Home)...)
		router.Get("/edit", loader.ForEvent(deps, editSettings, s.Edit)...)
		router.Post("/edit", loader.ForEvent(deps, editSettings, s.Update)...)
		router.Get("/settings", loader.ForEvent(deps, editSettings, s.Settings)...)
		router.Post("/settings", loader.ForEvent(deps, editSettings, s.SaveSettings)...)
		router.Get("/signup", loader.ForEvent(deps, s.requireMember, s.SignupForm)...)
		router.Post("/signup", loader.ForEvent(deps, s.requireMember, s.Signup)...)
		router.Post("/leave", loader.ForEvent(deps, s.Leave)...)
		router.Get("/checkin", loader.ForEvent(deps, s.CheckinForm)...)
		router.Post("/checkin", loader.ForEvent(deps, s.Checkin)...)
		router.Get("/authorize", loader.ForEvent(deps, authorize, s.AuthorizeForm)...)
		router.Post("/authorize", loader.ForEvent(deps, authorize, s.Authorize)...)
	})

	return nil
}

// New renders the create event form.
func (s *Service) New(c *fiber.Ctx) error {
	now := time.Now().Truncate(time.Hour)

	return s.renderNew(c, fiber.StatusOK, &Form{
		Start: now.Format(TimeLayout),
		End:   now.Add(time.Hour).Format(TimeLayout),
	}, nil)
}

// Create creates the event and signs the user up as its owner.
func (s *Service) Create(c *fiber.Ctx) error {
	group := request.Group(c)

	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	f, start, end, errs := parseForm(c)
	if errs != nil {
		return s.renderNew(c, fiber.StatusBadRequest, f, errs)
	}

	event := &models.Event{
		Name:        f.Name,
		Description: f.Description,
		StartsAt:    start,
		EndsAt:      end,
	}

	if err := s.provision.CreateEvent(c.UserContext(), group, event, user.ID); err != nil {
		return handler.InternalError(c, err, "failed to create event")
	}

	log.Info().Str("group", group.URL).Uint64("event_id", event.ID).Uint64("user_id", user.ID).
		Msg("event created")

	return c.Redirect(navigation.EventPath(group, event))
}

func (s *Service) renderNew(c *fiber.Ctx, status int, f *Form, errs []string) error {
	group := request.Group(c)

	return handler.Render(c, status, templateNew, navigation.ForGroup("New Event", "new-event", group), fiber.Map{
		"Form":   f,
		"Errors": errs,
	})
}

// Home shows the event, the signup of the user and, to everyone, who signed up and their
// check-in counts.
func (s *Service) Home(c *fiber.Ctx) error {
	group := request.Group(c)
	event := request.Event(c)
	user, _ := request.User(c)

	mine, err := s.resolver.ActiveSignup(c.UserContext(), event.ID, user.ID)
	if err != nil && !errors.Is(err, membership.ErrNotActive) {
		return handler.InternalError(c, err, "failed to load signup")
	}

	signups, err := s.resolver.Signups(c.UserContext(), event.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to list signups")
	}

	counts, err := s.issuer.Counts(c.UserContext(), event.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to count check-ins")
	}

	return handler.Render(c, fiber.StatusOK, templateHome, navigation.ForEvent(event.Name, "", group, event), fiber.Map{
		"Signup":   mine,
		"Signups":  signups,
		"Checkins": counts,
	})
}

// Edit renders the edit event form.
func (s *Service) Edit(c *fiber.Ctx) error {
	event := request.Event(c)

	return s.renderEdit(c, fiber.StatusOK, &Form{
		Name:        event.Name,
		Description: event.Description,
		Start:       event.StartsAt.Format(TimeLayout),
		End:         event.EndsAt.Format(TimeLayout),
	}, nil)
}

// Update stores the edit event form.
func (s *Service) Update(c *fiber.Ctx) error {
	group := request.Group(c)
	event := request.Event(c)

	f, start, end, errs := parseForm(c)
	if errs != nil {
		return s.renderEdit(c, fiber.StatusBadRequest, f, errs)
	}

	if err := s.provision.UpdateEvent(c.UserContext(), event, f.Name, f.Description, start, end); err != nil {
		return handler.InternalError(c, err, "failed to update event")
	}

	return c.Redirect(navigation.EventPath(group, event))
}

func (s *Service) renderEdit(c *fiber.Ctx, status int, f *Form, errs []string) error {
	group := request.Group(c)
	event := request.Event(c)

	return handler.Render(c, status, templateEdit, navigation.ForEvent("Edit", "edit", group, event), fiber.Map{
		"Form":   f,
		"Errors": errs,
	})
}

// parseForm binds and validates the event form.
func parseForm(c *fiber.Ctx) (*Form, time.Time, time.Time, []string) {
	f := new(Form)
	if err := c.BodyParser(f); err != nil {
		return f, time.Time{}, time.Time{}, []string{"Invalid form data"}
	}

	if err := handler.Validator.Struct(f); err != nil {
		return f, time.Time{}, time.Time{}, handler.ValidationMessages(err)
	}

	start, end, err := f.Times()
	if err != nil {
		return f, time.Time{}, time.Time{}, []string{err.Error()}
	}

	return f, start, end, nil
}

// requireMember lets only active members of the group of the event through.
func (s *Service) requireMember(c *fiber.Ctx) error {
	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	_, err := s.resolver.ActiveMembership(c.UserContext(), request.Group(c).ID, user.ID)
	if errors.Is(err, membership.ErrNotActive) {
		return handler.ErrorPage(c, fiber.StatusForbidden, "Join the group before signing up for its events")
	}

	if err != nil {
		return handler.InternalError(c, err, "failed to load membership")
	}

	return c.Next()
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
