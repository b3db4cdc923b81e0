package checkin

import "errors"

var (
	// ErrInvalidCodeLength is returned for a code length outside 1..MaxCodeLength.
	ErrInvalidCodeLength = errors.New("invalid authorization code length")

	// ErrAuthorizationFailed is returned when a code matches no authorizer, matches more than one,
	// or its owner may not authorize the event. Handlers show it as a message.
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrNotSignedUp is returned when the user has no active signup for the event.
	ErrNotSignedUp = errors.New("user is not signed up for this event")

	// ErrWaitlisted is returned when the user's signup is still on the waitlist.
	ErrWaitlisted = errors.New("user is on the waitlist")

	// ErrCheckinLimit is returned when the user reached the event's max_check_ins.
	ErrCheckinLimit = errors.New("check-in limit reached")
)
