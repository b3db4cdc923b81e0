package catalog

import (
	"maps"
	"slices"

	"github.com/rosterd/rosterd/internal/db/models"
)

// DefaultPrefix marks group settings that seed the settings of new events.
const DefaultPrefix = "default_"

// Setting names.
const (
	SettingMaxCheckIns   = "max_check_ins"
	SettingChooseRole    = "choose_role"
	SettingEnableSignups = "enable_signups"
	SettingEnableLeave   = "enable_leave"
	SettingAutoWaitlist  = "auto_waitlist"
	SettingRole          = "role"
	SettingWhitelist     = "whitelist"
	SettingGoogleLogin   = "google_login"
	SettingBuiltinLogin  = "builtin_login"
	SettingAuthorizeCode = "authorize_code"
)

const chooseRoleDescription = "Specify roles that new signups can select to be. " +
	"Disable to auto-assign the default role to new signups."

// SettingDefinition is a setting as it is seeded into a new owner.
type SettingDefinition struct {
	Label       string
	Description string
	Value       string
	Type        models.SettingType
	IsActive    bool
}

// EventSettings returns the default settings of a new event.
func EventSettings() map[string]SettingDefinition {
	return map[string]SettingDefinition{
		SettingMaxCheckIns: {
			Label:       "Maximum Number of Checkins",
			Description: "This is typically one. Disable this setting for no limit.",
			Value:       "1",
			Type:        models.SettingTypeString,
			IsActive:    true,
		},
		SettingChooseRole: {
			Label:       "Users Pick Roles",
			Description: chooseRoleDescription,
			Type:        models.SettingTypeBoolean,
			IsActive:    false,
		},
		SettingEnableSignups: {
			Label:       "Enable Signups",
			Description: "Allow users to signup",
			Type:        models.SettingTypeBoolean,
			IsActive:    true,
		},
		SettingEnableLeave: {
			Label:       "Enable Leave",
			Description: "Allow users to leave event",
			Type:        models.SettingTypeBoolean,
			IsActive:    true,
		},
		SettingAutoWaitlist: {
			Label:       "Automatically Waitlist",
			Description: "New signups are put on the waitlist.",
			Type:        models.SettingTypeBoolean,
			IsActive:    false,
		},
		SettingRole: {
			Label:       "Default Role",
			Description: "Specify a default role for this event",
			Value:       "Volunteer",
			Type:        models.SettingTypeSelect,
			IsActive:    true,
		},
	}
}

// explicitGroupSettings are the group keys that are not event defaults.
func explicitGroupSettings() map[string]SettingDefinition {
	return map[string]SettingDefinition{
		SettingWhitelist: {
			Label: "Whitelist",
			Description: "Whitelist staff members as user1@berkeley.edu(Position), " +
				"user2@berkeley.edu(Position2),...",
			Type:     models.SettingTypeString,
			IsActive: true,
		},
		SettingGoogleLogin: {
			Label:       "Google Login",
			Description: "Allow members to login with Google",
			Type:        models.SettingTypeBoolean,
			IsActive:    true,
		},
		SettingBuiltinLogin: {
			Label:       "Built-in Login",
			Description: "Allow members to login with a username and password",
			Type:        models.SettingTypeBoolean,
			IsActive:    true,
		},
		SettingChooseRole: {
			Label:       "Users Pick Roles",
			Description: chooseRoleDescription,
			Type:        models.SettingTypeBoolean,
			IsActive:    false,
		},
		SettingRole: {
			Label:       "Default Role",
			Description: "Specify a default role for new members",
			Value:       RoleMember,
			Type:        models.SettingTypeSelect,
			IsActive:    true,
		},
	}
}

// GroupSettings returns the default settings of a new group.
func GroupSettings() map[string]SettingDefinition {
	return MergeGroupSettings(explicitGroupSettings(), EventSettings())
}

// MergeGroupSettings re-keys every event setting as DefaultPrefix+name and overlays the explicit
// group settings. A generated key never replaces an explicit one.
func MergeGroupSettings(explicit, event map[string]SettingDefinition) map[string]SettingDefinition {
	out := make(map[string]SettingDefinition, len(explicit)+len(event))

	for name, def := range event {
		out[DefaultPrefix+name] = def
	}

	maps.Copy(out, explicit)

	return out
}

// UserSettings returns the default settings of a new user.
// The authorization code stays inactive until the user generates one.
func UserSettings() map[string]SettingDefinition {
	return map[string]SettingDefinition{
		SettingAuthorizeCode: {
			Label:       "Authorization Code",
			Description: "Code other users enter to check in at events you authorize",
			Type:        models.SettingTypeString,
			IsActive:    false,
		},
	}
}

// SortedNames returns the keys of a definition map in a stable order.
func SortedNames(defs map[string]SettingDefinition) []string {
	return slices.Sorted(maps.Keys(defs))
}
