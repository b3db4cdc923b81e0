package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedGormEngine error if config db.gormEngine names an unknown driver.
	ErrUnsupportedGormEngine = errors.New("toml config db.gormEngine is not supported")

	// ErrInvalidCodeLength error if config checkin.codeLength is out of range.
	ErrInvalidCodeLength = errors.New("toml config checkin.codeLength must be between 1 and 39")
)
