package config

import "errors"

// ConfigInitError reports a config file that exists but is not usable yet,
// typically because no models directory has been chosen.
type ConfigInitError struct {
	msg string
}

func (e *ConfigInitError) Error() string {
	return e.msg
}

// IsInitError reports whether err (or anything it wraps) is a ConfigInitError.
func IsInitError(err error) bool {
	var target *ConfigInitError
	return errors.As(err, &target)
}
