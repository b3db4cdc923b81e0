package group

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/importer"
	"github.com/rosterd/rosterd/internal/membership"
	"github.com/rosterd/rosterd/internal/provision"
	"github.com/rosterd/rosterd/internal/web/handler"
	"github.com/rosterd/rosterd/internal/web/handler/settings/form"
	"github.com/rosterd/rosterd/internal/web/navigation"
	"github.com/rosterd/rosterd/internal/web/request"
)

// EditForm is the edit group form. Url and category cannot change.
type EditForm struct {
	Name        string `form:"name"        validate:"required,max=100"`
	Description string `form:"description" validate:"max=2000"`
}

// Edit renders the edit group form.
func (s *Service) Edit(c *fiber.Ctx) error {
	group := request.Group(c)

	return s.renderEdit(c, fiber.StatusOK, &EditForm{Name: group.Name, Description: group.Description}, nil)
}

// Update stores the edit group form.
func (s *Service) Update(c *fiber.Ctx) error {
	group := request.Group(c)

	f := new(EditForm)
	if err := c.BodyParser(f); err != nil {
		return s.renderEdit(c, fiber.StatusBadRequest, f, []string{"Invalid form data"})
	}

	if err := handler.Validator.Struct(f); err != nil {
		return s.renderEdit(c, fiber.StatusBadRequest, f, handler.ValidationMessages(err))
	}

	if err := s.provision.UpdateGroup(c.UserContext(), group, f.Name, f.Description); err != nil {
		return handler.InternalError(c, err, "failed to update group")
	}

	return c.Redirect(navigation.GroupPath(group))
}

func (s *Service) renderEdit(c *fiber.Ctx, status int, f *EditForm, errs []string) error {
	group := request.Group(c)

	return handler.Render(c, status, templateEdit, navigation.ForGroup("Edit", "edit", group), fiber.Map{
		"Form":   f,
		"Errors": errs,
	})
}

// Settings renders the settings of the group.
func (s *Service) Settings(c *fiber.Ctx) error {
	return s.renderSettings(c, fiber.StatusOK, nil, false)
}

// SaveSettings stores the posted settings of the group.
func (s *Service) SaveSettings(c *fiber.Ctx) error {
	group := request.Group(c)

	options, err := s.settingOptions(c, group)
	if err != nil {
		return handler.InternalError(c, err, "failed to list roles")
	}

	invalid, err := form.Apply(c, s.db, models.SettingOwnerGroup, group.ID, options)
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

	options, err := s.settingOptions(c, group)
	if err != nil {
		return handler.InternalError(c, err, "failed to list roles")
	}

	rows, err := form.Rows(c.UserContext(), s.db, models.SettingOwnerGroup, group.ID, options)
	if err != nil {
		return handler.InternalError(c, err, "failed to list settings")
	}

	return handler.Render(c, status, templateSetting, navigation.ForGroup("Settings", "settings", group), fiber.Map{
		"Rows":   rows,
		"Errors": errs,
		"Saved":  saved,
		"Action": navigation.GroupPath(group) + "/settings",
	})
}

// settingOptions returns the choices of the role and default_role settings: the roles of the
// group and the event roles of its category.
func (s *Service) settingOptions(c *fiber.Ctx, group *models.Group) (map[string][]string, error) {
	roles, err := s.resolver.Roles(c.UserContext(), models.ScopeGroup, group.ID)
	if err != nil {
		return nil, err
	}

	eventRoles, err := catalog.EventRoles(group.Category)
	if err != nil {
		return nil, err
	}

	groupNames := make([]string, len(roles))
	for i, r := range roles {
		groupNames[i] = r.Name
	}

	eventNames := make([]string, len(eventRoles))
	for i, r := range eventRoles {
		eventNames[i] = r.Name
	}

	return map[string][]string{
		catalog.SettingRole:                         groupNames,
		catalog.DefaultPrefix + catalog.SettingRole: eventNames,
	}, nil
}

// ImportForm renders the bulk membership import form.
func (s *Service) ImportForm(c *fiber.Ctx) error {
	return s.renderImport(c, fiber.StatusOK, nil, nil)
}

// Import reads an uploaded CSV or XLSX file and creates a membership for every row.
func (s *Service) Import(c *fiber.Ctx) error {
	group := request.Group(c)

	file, err := c.FormFile("file")
	if err != nil {
		return s.renderImport(c, fiber.StatusBadRequest, nil, []string{"Choose a file to import"})
	}

	format, err := importer.FormatOf(file.Filename)
	if err != nil {
		return s.renderImport(c, fiber.StatusBadRequest, nil, []string{err.Error()})
	}

	f, err := file.Open()
	if err != nil {
		return handler.InternalError(c, err, "failed to open upload")
	}
	defer f.Close()

	rows, err := importer.Read(f, format)
	if err != nil {
		return s.renderImport(c, fiber.StatusBadRequest, nil, []string{err.Error()})
	}

	result, err := s.resolver.Import(c.UserContext(), group, rows, handler.Checked(c.FormValue("override")))
	if err != nil {
		return handler.InternalError(c, err, "failed to import members")
	}

	log.Info().Str("group", group.URL).Str("batch", result.Batch).
		Int("created", result.Created).Int("updated", result.Updated).Int("errors", len(result.Errors)).
		Msg("members imported")

	return s.renderImport(c, fiber.StatusOK, result, nil)
}

func (s *Service) renderImport(c *fiber.Ctx, status int, result *membership.ImportResult, errs []string) error {
	group := request.Group(c)

	return handler.Render(c, status, templateImport, navigation.ForGroup("Import", "import", group), fiber.Map{
		"Result": result,
		"Errors": errs,
	})
}

// ProcessForm lists the events of the group with waitlisted signups.
func (s *Service) ProcessForm(c *fiber.Ctx) error {
	return s.renderProcess(c, fiber.StatusOK, nil)
}

// Process moves the waitlisted signups of the selected events off the waitlist.
func (s *Service) Process(c *fiber.Ctx) error {
	group := request.Group(c)

	raw := c.Request().PostArgs().PeekMulti("event_id")
	if len(raw) == 0 {
		return s.renderProcess(c, fiber.StatusBadRequest, []string{"Select at least one event"})
	}

	var promoted int64

	for _, v := range raw {
		id, err := strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			return s.renderProcess(c, fiber.StatusBadRequest, []string{fmt.Sprintf("invalid event %q", v)})
		}

		event, err := s.provision.Event(c.UserContext(), group.ID, id)
		if errors.Is(err, provision.ErrEventNotFound) {
			return s.renderProcess(c, fiber.StatusBadRequest, []string{fmt.Sprintf("no such event %d", id)})
		}

		if err != nil {
			return handler.InternalError(c, err, "failed to load event")
		}

		n, err := s.resolver.ProcessWaitlist(c.UserContext(), event)
		if err != nil {
			return handler.InternalError(c, err, "failed to process waitlist")
		}

		promoted += n
	}

	log.Info().Str("group", group.URL).Int64("promoted", promoted).Msg("waitlists processed")

	return c.Redirect(navigation.GroupPath(group) + "/process")
}

func (s *Service) renderProcess(c *fiber.Ctx, status int, errs []string) error {
	group := request.Group(c)

	events, err := s.provision.Events(c.UserContext(), group.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to list events")
	}

	counts, err := s.provision.WaitlistCounts(c.UserContext(), group.ID)
	if err != nil {
		return handler.InternalError(c, err, "failed to count waitlists")
	}

	return handler.Render(c, status, templateProcess, navigation.ForGroup("Waitlists", "process", group), fiber.Map{
		"Events":    events,
		"Waitlists": counts,
		"Errors":    errs,
	})
}
