package lockout

import "errors"

var ErrAccountLocked = errors.New("account locked")
