// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// ErrDomain is the marker for every domain rule violation. Task
// executors swallow this whole class: a domain error on a fired task
// means the state already moved on and there is no work to do.
var ErrDomain = errors.New("domain error")

var (
	ErrUserLimitReached           = fmt.Errorf("%w: user limit reached", ErrDomain)
	ErrNotEnoughPlayers           = fmt.Errorf("%w: not enough players", ErrDomain)
	ErrNoAdminSuccessor           = fmt.Errorf("%w: no admin successor", ErrDomain)
	ErrPasswordRequired           = fmt.Errorf("%w: password required", ErrDomain)
	ErrIncorrectPassword          = fmt.Errorf("%w: incorrect password", ErrDomain)
	ErrUserIsNotAdmin             = fmt.Errorf("%w: user is not admin", ErrDomain)
	ErrUserIsTryingKickHimself    = fmt.Errorf("%w: user is trying to kick himself", ErrDomain)
	ErrUserNotInLobby             = fmt.Errorf("%w: user not in lobby", ErrDomain)
	ErrUserNotInGame              = fmt.Errorf("%w: user not in game", ErrDomain)
	ErrUserAlreadyInLobby         = fmt.Errorf("%w: user already in lobby", ErrDomain)
	ErrUserIsDisconnectedFromGame = fmt.Errorf("%w: user is disconnected from game", ErrDomain)
	ErrUserIsConnectedToGame      = fmt.Errorf("%w: user is connected to game", ErrDomain)
)
