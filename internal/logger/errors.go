package logger

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned when Log.AppName is not set.
	ErrAppNameIsEmpty = errors.New("log app name must be set")
	// ErrServiceNameIsEmpty is returned when Log.ServiceName is not set.
	ErrServiceNameIsEmpty = errors.New("log service name must be set")
	// ErrLogPathEmpty is returned when file logging is enabled without a directory.
	ErrLogPathEmpty = errors.New("log file path must be set when file logging is enabled")
	// ErrRotationNameEmpty is returned when a level file has no name.
	ErrRotationNameEmpty = errors.New("log file rotation needs a file name")
)

// ErrorHandler reports events zerolog could not write. It must not log through zerolog itself.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "logger: dropped log event: %v\n", err)
}
