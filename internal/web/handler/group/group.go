// Package group serves the pages of a group: home, events, members, member details, editing,
// settings, joining and leaving, bulk import, waitlist processing and the public whitelist.
package group

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/auth"
	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/db/controller/setting"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/membership"
	"github.com/rosterd/rosterd/internal/provision"
	"github.com/rosterd/rosterd/internal/web/handler"
	"github.com/rosterd/rosterd/internal/web/middleware/loader"
	"github.com/rosterd/rosterd/internal/web/navigation"
	"github.com/rosterd/rosterd/internal/web/request"
	"github.com/rosterd/rosterd/internal/whitelist"
)

const (
	// Path is the route prefix of all group pages.
	Path = handler.RootPath + "g/:" + loader.ParamGroup

	templateHome    = "group/home"
	templateEvents  = "group/events"
	templateMembers = "group/members"
	templateMember  = "group/member"
	templateEdit    = "group/edit"
	templateSignup  = "group/signup"
	templateImport  = "group/import"
	templateProcess = "group/process"
	templateSetting = "settings"
)

// Service is the group handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	auth      *auth.Service
	resolver  *membership.Resolver
	provision *provision.Service
}

// Handler is the group handler.
var Handler = Service{}

// Init registers the group routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.DB == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = deps.Cfg
	s.db = deps.DB
	s.auth = deps.Auth
	s.resolver = deps.Resolver
	s.provision = deps.Provision

	editSettings := auth.RequireGroupPermission(deps.Auth, auth.PermEditSettings)
	createEvent := auth.RequireGroupPermission(deps.Auth, auth.PermCreateEvent)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, loader.ForGroup(deps, s.Home)...)
		router.Get("/events", loader.ForGroup(deps, s.Events)...)
		router.Get("/members", loader.ForGroup(deps, s.requireMember, s.Members)...)
		router.Get("/u/:user_id", loader.ForGroup(deps, s.requireMember, s.Member)...)
		router.Get("/edit", loader.ForGroup(deps, editSettings, s.Edit)...)
		router.Post("/edit", loader.ForGroup(deps, editSettings, s.Update)...)
		router.Get("/settings", loader.ForGroup(deps, editSettings, s.Settings)...)
		router.Post("/settings", loader.ForGroup(deps, editSettings, s.SaveSettings)...)
		router.Get("/signup", loader.ForGroup(deps, s.SignupForm)...)
		router.Post("/signup", loader.ForGroup(deps, s.Signup)...)
		router.Post("/leave", loader.ForGroup(deps, s.Leave)...)
		router.Get("/import", loader.ForGroup(deps, createEvent, s.ImportForm)...)
		router.Post("/import", loader.ForGroup(deps, createEvent, s.Import)...)
		router.Get("/process", loader.ForGroup(deps, createEvent, s.ProcessForm)...)
		router.Post("/process", loader.ForGroup(deps, createEvent, s.Process)...)
		router.Get("/whitelist/:token", loader.Group(deps.Provision), s.Whitelist)
	})

	return nil
}

// Home shows the group, the membership of the user and the latest events.
func (s *Service) Home(c *fiber.Ctx) error {
	group := request.Group(c)
	user, _ := request.User(c)

	m, err := s.resolver.ActiveMembership(c.UserContext(), group.ID, user.ID)
	if err != nil && !errors.Is(err, membership.ErrNotActive) {
		return handler.InternalError(c, err, "failed to load membership")
	}

	events, err := s.provision.Events(c.UserContext(), group.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to list events")
	}

	data := fiber.Map{
		"Membership": m,
		"Events":     events,
	}

	canEdit, err := s.auth.Can(c.UserContext(), models.ScopeGroup, group.ID, user.ID, auth.PermEditSettings)
	if err != nil {
		return handler.InternalError(c, err, "failed to check permission")
	}

	if canEdit {
		entries, errWl := s.whitelist(c, group)
		if errWl != nil {
			return handler.InternalError(c, errWl, "failed to load whitelist")
		}

		data["Whitelist"] = entries
		data["WhitelistURL"] = s.cfg.Webserver.URL + navigation.GroupPath(group) + "/whitelist/" + group.AccessToken
	}

	logins, err := s.loginMethods(c, group)
	if err != nil {
		return handler.InternalError(c, err, "failed to load login settings")
	}

	data["LoginMethods"] = logins

	return handler.Render(c, fiber.StatusOK, templateHome, navigation.ForGroup(group.Name, "", group), data)
}

// Events lists all events of the group.
func (s *Service) Events(c *fiber.Ctx) error {
	group := request.Group(c)

	events, err := s.provision.Events(c.UserContext(), group.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to list events")
	}

	return handler.Render(c, fiber.StatusOK, templateEvents, navigation.ForGroup("Events", "events", group), fiber.Map{
		"Events": events,
	})
}

// Members lists the active members of the group, highest role first.
func (s *Service) Members(c *fiber.Ctx) error {
	group := request.Group(c)

	members, err := s.resolver.Members(c.UserContext(), group.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to list members")
	}

	return handler.Render(c, fiber.StatusOK, templateMembers, navigation.ForGroup("Members", "members", group), fiber.Map{
		"Members": members,
	})
}

// Member shows the latest membership of one user and their signups for events of the group.
func (s *Service) Member(c *fiber.Ctx) error {
	group := request.Group(c)

	userID, err := strconv.ParseUint(c.Params("user_id"), 10, 64)
	if err != nil {
		return handler.ErrorPage(c, fiber.StatusNotFound, "No such member")
	}

	m, err := s.resolver.Member(c.UserContext(), group.ID, userID)
	if errors.Is(err, membership.ErrNotActive) {
		return handler.ErrorPage(c, fiber.StatusNotFound, "No such member")
	}

	if err != nil {
		return handler.InternalError(c, err, "failed to load member")
	}

	signups, err := s.resolver.SignupsOf(c.UserContext(), group.ID, userID)
	if err != nil {
		return handler.InternalError(c, err, "failed to list signups")
	}

	nav := navigation.ForGroup(m.User.DisplayName(), "members", group)

	return handler.Render(c, fiber.StatusOK, templateMember, nav, fiber.Map{
		"Member":  m,
		"Signups": signups,
	})
}

// requireMember lets only active members of the group through.
func (s *Service) requireMember(c *fiber.Ctx) error {
	user, ok := request.User(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	_, err := s.resolver.ActiveMembership(c.UserContext(), request.Group(c).ID, user.ID)
	if errors.Is(err, membership.ErrNotActive) {
		return handler.ErrorPage(c, fiber.StatusForbidden, "Only members can see this page")
	}

	if err != nil {
		return handler.InternalError(c, err, "failed to load membership")
	}

	return c.Next()
}

// whitelist returns the parsed whitelist with the fallback role for entries without a position.
// An inactive whitelist is empty, as joins ignore it.
func (s *Service) whitelist(c *fiber.Ctx, group *models.Group) ([]whitelist.Entry, error) {
	wl, err := setting.Get(s.db.WithContext(c.UserContext()), models.SettingOwnerGroup, group.ID, catalog.SettingWhitelist)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return []whitelist.Entry{}, nil
	}

	if err != nil {
		return nil, err
	}

	if !wl.IsActive {
		return []whitelist.Entry{}, nil
	}

	fallback, err := catalog.FallbackGroupRole(group.Category)
	if err != nil {
		return nil, err
	}

	return whitelist.Labelled(whitelist.Parse(wl.Value), fallback), nil
}

// loginMethods reports the google_login and builtin_login settings of the group.
func (s *Service) loginMethods(c *fiber.Ctx, group *models.Group) (map[string]bool, error) {
	out := map[string]bool{}

	for _, name := range []string{catalog.SettingGoogleLogin, catalog.SettingBuiltinLogin} {
		st, err := setting.Get(s.db.WithContext(c.UserContext()), models.SettingOwnerGroup, group.ID, name)
		if errors.Is(err, setting.ErrSettingNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		out[name] = st.IsActive
	}

	return out, nil
}
