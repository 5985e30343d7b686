// internal/app/create_lobby.go
package app

import (
	"context"
	"time"

	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

const (
	minLobbyNameLength = 3
	maxLobbyNameLength = 128

	minLobbyPasswordLength = 3
	maxLobbyPasswordLength = 64

	minConnectFourTimeForEachPlayer = 30 * time.Second
	maxConnectFourTimeForEachPlayer = 3 * time.Minute
)

type CreateLobbyCommand struct {
	UserID   domain.UserID
	Name     string
	RuleSet  domain.RuleSet
	Password string
}

// CreateLobby creates a lobby with the caller as admin and arms the
// creator's presence window.
func (r *Request) CreateLobby(ctx context.Context, cmd CreateLobbyCommand) (domain.LobbyID, error) {
	if cmd.UserID.IsZero() {
		return domain.LobbyID{}, ErrMissingUserID
	}

	if err := r.ensureUserIsIdle(ctx, cmd.UserID); err != nil {
		return domain.LobbyID{}, err
	}

	if l := len(cmd.Name); l < minLobbyNameLength || l > maxLobbyNameLength {
		return domain.LobbyID{}, ErrInvalidLobbyName
	}
	if err := validateRuleSet(cmd.RuleSet); err != nil {
		return domain.LobbyID{}, err
	}

	passwordHash := ""
	if cmd.Password != "" {
		if l := len(cmd.Password); l < minLobbyPasswordLength || l > maxLobbyPasswordLength {
			return domain.LobbyID{}, ErrInvalidLobbyPassword
		}
		hash, err := domain.HashLobbyPassword(cmd.Password)
		if err != nil {
			return domain.LobbyID{}, err
		}
		passwordHash = hash
	}

	lobby := domain.NewLobby(cmd.Name, cmd.UserID, cmd.RuleSet, passwordHash)
	if err := r.Lobbies.Save(ctx, lobby); err != nil {
		return domain.LobbyID{}, err
	}

	err := r.Tasks.Schedule(ctx, scheduling.RemoveFromLobbyTask{
		LobbyID:     lobby.ID,
		UserID:      cmd.UserID,
		OperationID: r.opID,
		ExecuteAt:   time.Now().Add(PresenceGraceWindow),
	})
	if err != nil {
		return domain.LobbyID{}, err
	}

	ruleSet, err := events.NewRuleSetPayload(cmd.RuleSet)
	if err != nil {
		return domain.LobbyID{}, err
	}
	r.publishEvent(events.LobbyCreated{
		LobbyID:     lobby.ID.Hex(),
		Name:        lobby.Name,
		AdminID:     cmd.UserID.Hex(),
		HasPassword: lobby.HasPassword(),
		RuleSet:     ruleSet,
		OperationID: r.opID.Hex(),
	})

	r.publishRealtime(
		centrifugo.NewPublish(centrifugo.UserChannel(cmd.UserID), map[string]any{
			"type":     "lobby_created",
			"lobby_id": lobby.ID.Hex(),
			"name":     lobby.Name,
			"rule_set": ruleSet,
		}),
		centrifugo.NewPublish(centrifugo.LobbyBrowserChannel, map[string]any{
			"type":         "lobby_created",
			"lobby_id":     lobby.ID.Hex(),
			"name":         lobby.Name,
			"has_password": lobby.HasPassword(),
			"rule_set":     ruleSet,
		}),
	)

	r.Log.WithField("lobby_id", lobby.ID.Hex()).Info("lobby created")
	return lobby.ID, nil
}

// ensureUserIsIdle enforces at-most-one-presence: the user may be in
// no lobby and no game.
func (r *Request) ensureUserIsIdle(ctx context.Context, userID domain.UserID) error {
	lobby, err := r.Lobbies.ByUserID(ctx, userID, false)
	if err != nil {
		return err
	}
	if lobby != nil {
		return ErrCurrentUserInLobby
	}

	game, err := r.Games.ByPlayerID(ctx, userID, false)
	if err != nil {
		return err
	}
	if game != nil {
		return ErrCurrentUserInGame
	}
	return nil
}

func validateRuleSet(rs domain.RuleSet) error {
	switch v := rs.(type) {
	case domain.ConnectFourRuleSet:
		if v.TimeForEachPlayer < minConnectFourTimeForEachPlayer ||
			v.TimeForEachPlayer > maxConnectFourTimeForEachPlayer {
			return ErrInvalidLobbyRuleSet
		}
		return nil
	default:
		return ErrInvalidLobbyRuleSet
	}
}
