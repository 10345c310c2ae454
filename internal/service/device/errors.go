package device

import "errors"

var (
	ErrNotFound          = errors.New("device token not found")
	ErrInvalidDeviceType = errors.New("invalid device type")
	ErrTokenRequired     = errors.New("device token is required")
)
