package catalog

import (
	"fmt"

	"github.com/rosterd/rosterd/internal/db/models"
)

// Wildcard grants every permission of the role's scope.
const Wildcard = "*"

// Role names referenced by code outside the catalog.
const (
	RoleOwner  = "Owner"
	RoleMember = "Member"
)

// RoleTemplate is a role as it is seeded into a new group or event.
type RoleTemplate struct {
	Name        string
	Permissions string
}

var groupRoles = map[models.Category][]RoleTemplate{
	models.CategoryClass: {
		{Name: RoleOwner, Permissions: Wildcard},
		{Name: "Professor", Permissions: Wildcard},
		{Name: "GSI", Permissions: "edit_settings, create_event, authorize"},
		{Name: "Reader", Permissions: ""},
		{Name: "Lab Assistant", Permissions: ""},
		{Name: RoleMember, Permissions: ""},
	},
	models.CategoryNonprofit: {
		{Name: RoleOwner, Permissions: Wildcard},
		{Name: "Chair", Permissions: Wildcard},
		{Name: "Board", Permissions: "edit_settings, create_event"},
		{Name: "Volunteer", Permissions: ""},
		{Name: RoleMember, Permissions: ""},
	},
}

var eventRoles = map[models.Category][]RoleTemplate{
	models.CategoryClass: {
		{Name: RoleOwner, Permissions: Wildcard},
		{Name: "Authorizer", Permissions: "authorize"},
		{Name: "Volunteer", Permissions: ""},
	},
	models.CategoryNonprofit: {
		{Name: RoleOwner, Permissions: Wildcard},
		{Name: "Chairperson", Permissions: "authorize"},
		{Name: "Volunteer", Permissions: ""},
	},
}

// Categories lists every category with a catalog entry.
func Categories() []models.Category {
	return []models.Category{models.CategoryClass, models.CategoryNonprofit}
}

// GroupRoles returns a copy of the default group roles of a category, highest rank first.
func GroupRoles(category models.Category) ([]RoleTemplate, error) {
	return lookup(groupRoles, category)
}

// EventRoles returns a copy of the default event roles of a category, highest rank first.
func EventRoles(category models.Category) ([]RoleTemplate, error) {
	return lookup(eventRoles, category)
}

// FallbackGroupRole is the name of the lowest-priority default group role.
func FallbackGroupRole(category models.Category) (string, error) {
	roles, err := GroupRoles(category)
	if err != nil {
		return "", err
	}

	return roles[len(roles)-1].Name, nil
}

// FallbackEventRole is the name of the lowest-priority default event role.
func FallbackEventRole(category models.Category) (string, error) {
	roles, err := EventRoles(category)
	if err != nil {
		return "", err
	}

	return roles[len(roles)-1].Name, nil
}

func lookup(table map[models.Category][]RoleTemplate, category models.Category) ([]RoleTemplate, error) {
	roles, ok := table[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	out := make([]RoleTemplate, len(roles))
	copy(out, roles)

	return out, nil
}
