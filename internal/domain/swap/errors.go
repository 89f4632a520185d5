package swap

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	ErrInvalidState  = errors.New("invalid state")
	ErrConflict      = errors.New("conflicting swap exists")
	ErrAlreadyRated  = errors.New("already rated")
)

// ErrSkillNotOwned is a validation failure raised when a proposal names a skill
// the relevant user does not list.
var ErrSkillNotOwned = fmt.Errorf("%w: skill not owned", ErrValidation)
