package sigs

import (
	"github.com/iov-one/poa/errors"
)

// x/sigs reserves 320 ~ 329.
var (
	ErrInvalidSequence = errors.Register(320, "invalid sequence")
	ErrInvalidPubKey   = errors.Register(321, "invalid public key")
)
