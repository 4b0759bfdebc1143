package contact

import "errors"

var ErrInvalidContact = errors.New("invalid contact")
