package logger

import (
	"errors"
	"fmt"
	"os"
)

// Configuration errors reported by Init.
var (
	ErrAppNameIsEmpty       = errors.New("config Log.AppName can not be empty")
	ErrServiceNameIsEmpty   = errors.New("config Log.ServiceName can not be empty")
	ErrDataDogAPIKeyIsEmpty = errors.New("config Log.DataDog.APIKey can not be empty when enabled")
)

// ErrorHandler reports events zerolog failed to write. It is installed as zerolog.ErrorHandler.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintln(os.Stderr, "rosterd: dropped log event:", err)
}
