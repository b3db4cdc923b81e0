// Package provision creates groups and events together with their default roles, settings
// and owner.
package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dchest/uniuri"
	"gorm.io/gorm"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/controller/setting"
	"github.com/rosterd/rosterd/internal/db/models"
	"github.com/rosterd/rosterd/internal/membership"
)

// AccessTokenLen is the length of the token guarding the public whitelist endpoint.
const AccessTokenLen = 32

var (
	// ErrGroupURLTaken is returned when another group already uses the url.
	ErrGroupURLTaken = errors.New("group url is already taken")
	// ErrEventNotInGroup is returned when an event is created for a different group.
	ErrEventNotInGroup = errors.New("event does not belong to group")
)

// Service creates groups and events.
type Service struct {
	db *gorm.DB
}

// New creates a provisioning service.
func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateGroup stores group, seeds the group roles and settings of its category and makes
// creator the group owner.
func (s *Service) CreateGroup(ctx context.Context, group *models.Group, creatorID uint64) error {
	roles, err := catalog.GroupRoles(group.Category)
	if err != nil {
		return err
	}

	group.URL = strings.ToLower(strings.TrimSpace(group.URL))
	group.IsActive = true
	group.AccessToken = uniuri.NewLen(AccessTokenLen)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if errCount := tx.Model(&models.Group{}).Where("url = ?", group.URL).Count(&count).Error; errCount != nil {
			return errCount
		}

		if count > 0 {
			return ErrGroupURLTaken
		}

		if errCreate := tx.Create(group).Error; errCreate != nil {
			return fmt.Errorf("failed to create group: %w", errCreate)
		}

		if errRoles := SeedRoles(tx, models.ScopeGroup, group.ID, roles); errRoles != nil {
			return errRoles
		}

		if errSeed := setting.Seed(tx, models.SettingOwnerGroup, group.ID, catalog.GroupSettings()); errSeed != nil {
			return fmt.Errorf("failed to seed group settings: %w", errSeed)
		}

		_, errJoin := membership.NewResolver(tx).
			JoinAs(ctx, group, creatorID, catalog.RoleOwner, models.MembershipSourceOwner)

		return errJoin
	})
}

// CreateEvent stores event for group, seeds the event roles of the group's category, copies the
// group's default_* settings into event settings and signs creator up as the event owner.
func (s *Service) CreateEvent(ctx context.Context, group *models.Group, event *models.Event, creatorID uint64) error {
	if event.GroupID != 0 && event.GroupID != group.ID {
		return ErrEventNotInGroup
	}

	roles, err := catalog.EventRoles(group.Category)
	if err != nil {
		return err
	}

	event.GroupID = group.ID
	event.IsActive = true

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Omit("Group").Create(event).Error; errCreate != nil {
			return fmt.Errorf("failed to create event: %w", errCreate)
		}

		if errRoles := SeedRoles(tx, models.ScopeEvent, event.ID, roles); errRoles != nil {
			return errRoles
		}

		defs, errDefs := EventDefaults(tx, group.ID)
		if errDefs != nil {
			return errDefs
		}

		if errSeed := setting.Seed(tx, models.SettingOwnerEvent, event.ID, defs); errSeed != nil {
			return fmt.Errorf("failed to seed event settings: %w", errSeed)
		}

		_, errSignup := membership.NewResolver(tx).SignupAs(ctx, event, creatorID, catalog.RoleOwner)

		return errSignup
	})
}

// EventDefaults returns the settings a new event of the group starts with: the group's
// default_* settings, completed by the catalog for names the group does not have.
func EventDefaults(db *gorm.DB, groupID uint64) (map[string]catalog.SettingDefinition, error) {
	groupSettings, err := setting.List(db, models.SettingOwnerGroup, groupID)
	if err != nil {
		return nil, err
	}

	defs := catalog.EventSettings()
	for name, def := range setting.DefinitionsWithPrefix(groupSettings, catalog.DefaultPrefix) {
		defs[name] = def
	}

	return defs, nil
}

// SeedRoles creates the roles of a new group or event in catalog order.
func SeedRoles(tx *gorm.DB, scope models.Scope, ownerID uint64, templates []catalog.RoleTemplate) error {
	roles := make([]models.Role, 0, len(templates))

	for i, tpl := range templates {
		roles = append(roles, models.Role{
			Scope:       scope,
			OwnerID:     ownerID,
			Name:        tpl.Name,
			Permissions: tpl.Permissions,
			Position:    i,
			IsActive:    true,
		})
	}

	if err := tx.Create(&roles).Error; err != nil {
		return fmt.Errorf("failed to seed %s roles: %w", scope, err)
	}

	return nil
}
