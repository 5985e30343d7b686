// internal/app/errors.go
package app

import (
	"errors"
	"fmt"
)

// ErrApplication is the marker for input-validation and
// state-precondition failures. Like domain errors, this class is
// benign on a fired task: it means the world moved on before the
// deadline.
var ErrApplication = errors.New("application error")

var (
	ErrInvalidLobbyName     = fmt.Errorf("%w: invalid lobby name", ErrApplication)
	ErrInvalidLobbyRuleSet  = fmt.Errorf("%w: invalid lobby rule set", ErrApplication)
	ErrInvalidLobbyPassword = fmt.Errorf("%w: invalid lobby password", ErrApplication)

	ErrCurrentUserInLobby    = fmt.Errorf("%w: current user is in a lobby", ErrApplication)
	ErrCurrentUserInGame     = fmt.Errorf("%w: current user is in a game", ErrApplication)
	ErrCurrentUserNotInLobby = fmt.Errorf("%w: current user is not in a lobby", ErrApplication)
	ErrCurrentUserNotInGame  = fmt.Errorf("%w: current user is not in a game", ErrApplication)
	ErrUserNotInLobby        = fmt.Errorf("%w: user is not in the lobby", ErrApplication)
	ErrUserNotInGame         = fmt.Errorf("%w: user is not in the game", ErrApplication)
	ErrLobbyDoesNotExist     = fmt.Errorf("%w: lobby does not exist", ErrApplication)
	ErrGameDoesNotExist      = fmt.Errorf("%w: game does not exist", ErrApplication)
	ErrMissingUserID         = fmt.Errorf("%w: missing user id", ErrApplication)
)
