package session

import (
	"github.com/iov-one/poa/errors"
)

// x/session reserves 310 ~ 319.
var (
	ErrKeysLocked = errors.Register(310, "keys locked")
)
