package config

import (
	"errors"
	"fmt"
)

// Error codes for configuration failures.
const (
	ErrCodeRead    = "CONFIG_READ"
	ErrCodeFormat  = "CONFIG_FORMAT"
	ErrCodeParse   = "CONFIG_PARSE"
	ErrCodeInvalid = "CONFIG_INVALID"
)

// ConfigError reports a configuration file that could not be used.
type ConfigError struct {
	Code    string
	Path    string // File path, empty for in-memory configs
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is a *ConfigError with the given code.
// An empty code matches any ConfigError.
func IsConfigError(err error, code string) bool {
	var ce *ConfigError
	if !errors.As(err, &ce) {
		return false
	}
	return code == "" || ce.Code == code
}
