package validators

import (
	"github.com/iov-one/poa/errors"
)

// x/validators reserves 300 ~ 309.
var (
	ErrAlreadyValidator  = errors.Register(300, "already a validator")
	ErrNotValidator      = errors.Register(301, "not a validator")
	ErrDuplicateVote     = errors.Register(302, "duplicate vote")
	ErrProposalNotFound  = errors.Register(303, "proposal not found")
	ErrInsufficientVotes = errors.Register(304, "insufficient votes")
	ErrKeyResolution     = errors.Register(305, "key resolution failed")
)
