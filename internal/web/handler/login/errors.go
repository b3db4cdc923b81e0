package login

import "errors"

// Messages shown on the login page.
var (
	ErrInvalidFormData     = errors.New("invalid form data")
	ErrLocalAuthDisabled   = errors.New("local authentication is disabled")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrInternalServerError = errors.New("internal server error")
)
