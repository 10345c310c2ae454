package preference

import "errors"

var ErrInvalidType = errors.New("invalid notification type")
