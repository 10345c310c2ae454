package notification

import "errors"

var (
	ErrNotFound         = errors.New("notification not found")
	ErrInvalidType      = errors.New("invalid notification type")
	ErrTemplateNotFound = errors.New("notification template not found")
	ErrInvalidAction    = errors.New("invalid bulk action")
)
