package membership

import "errors"

var (
	// ErrDuplicateActiveRecord is returned when the user already has an active membership or signup.
	// Handlers redirect to the existing state instead of rendering an error.
	ErrDuplicateActiveRecord = errors.New("user already has an active record")

	// ErrRoleRequired is returned when choose_role is active and no role was selected.
	ErrRoleRequired = errors.New("a role must be selected")

	// ErrRoleNotFound is returned when the named or selected role does not exist or is inactive.
	ErrRoleNotFound = errors.New("role not found")

	// ErrUnauthorizedRoleChoice is returned when the selected role belongs to another group or event.
	ErrUnauthorizedRoleChoice = errors.New("role belongs to another group or event")

	// ErrSignupsDisabled is returned when the event has enable_signups turned off.
	ErrSignupsDisabled = errors.New("signups are disabled for this event")

	// ErrLeaveDisabled is returned when the event has enable_leave turned off.
	ErrLeaveDisabled = errors.New("leaving is disabled for this event")

	// ErrNotActive is returned when there is no active membership or signup to act on.
	ErrNotActive = errors.New("no active membership or signup")

	// ErrEventNotInGroup is returned when an event is used with a group it does not belong to.
	ErrEventNotInGroup = errors.New("event does not belong to group")
)
