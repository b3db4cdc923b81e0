package auth

import (
	"slices"
	"strings"

	"github.com/rosterd/rosterd/internal/catalog"
	"github.com/rosterd/rosterd/internal/db/models"
)

// Permission is one entry of the closed permission vocabulary of a scope.
type Permission string

const (
	// PermEditSettings allows editing group details, group settings and the events of the group.
	PermEditSettings Permission = "edit_settings"
	// PermCreateEvent allows creating events, importing signups and processing waitlists.
	PermCreateEvent Permission = "create_event"
	// PermAuthorize allows issuing check-in authorization codes for an event.
	PermAuthorize Permission = "authorize"
)

var scopePermissions = map[models.Scope][]Permission{
	models.ScopeGroup: {PermEditSettings, PermCreateEvent},
	models.ScopeEvent: {PermAuthorize},
}

// Permissions returns the vocabulary of a scope.
func Permissions(scope models.Scope) []Permission {
	return slices.Clone(scopePermissions[scope])
}

// In reports whether p belongs to the vocabulary of scope.
func (p Permission) In(scope models.Scope) bool {
	return slices.Contains(scopePermissions[scope], p)
}

// ParsePermissions reads a role permission column. The wildcard expands to the whole vocabulary;
// names outside the scope vocabulary are dropped.
func ParsePermissions(scope models.Scope, raw string) []Permission {
	raw = strings.TrimSpace(raw)
	if raw == catalog.Wildcard {
		return Permissions(scope)
	}

	var perms []Permission

	for _, name := range strings.Split(raw, ",") {
		p := Permission(strings.TrimSpace(name))
		if p.In(scope) && !slices.Contains(perms, p) {
			perms = append(perms, p)
		}
	}

	return perms
}

// HasPermission reports whether role grants perm. Inactive roles grant nothing, and a permission
// of another scope is never granted, not even by the wildcard.
func HasPermission(role *models.Role, perm Permission) bool {
	if role == nil || !role.IsActive || !perm.In(role.Scope) {
		return false
	}

	return slices.Contains(ParsePermissions(role.Scope, role.Permissions), perm)
}
