// internal/app/join_lobby.go
package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

type JoinLobbyCommand struct {
	UserID   domain.UserID
	LobbyID  domain.LobbyID
	Password string
}

// JoinLobby adds the caller to an existing lobby as a regular member
// and arms their presence window.
func (r *Request) JoinLobby(ctx context.Context, cmd JoinLobbyCommand) error {
	if cmd.UserID.IsZero() {
		return ErrMissingUserID
	}

	if err := r.ensureUserIsIdle(ctx, cmd.UserID); err != nil {
		return err
	}

	lobby, err := r.Lobbies.ByID(ctx, cmd.LobbyID, true)
	if err != nil {
		return err
	}
	if lobby == nil {
		return ErrLobbyDoesNotExist
	}

	if err := lobby.Join(cmd.UserID, cmd.Password); err != nil {
		return err
	}
	if err := r.Lobbies.Update(ctx, lobby); err != nil {
		return err
	}

	err = r.Tasks.Schedule(ctx, scheduling.RemoveFromLobbyTask{
		LobbyID:     lobby.ID,
		UserID:      cmd.UserID,
		OperationID: r.opID,
		ExecuteAt:   time.Now().Add(PresenceGraceWindow),
	})
	if err != nil {
		return err
	}

	r.publishEvent(events.UserJoinedLobby{
		LobbyID:     lobby.ID.Hex(),
		UserID:      cmd.UserID.Hex(),
		OperationID: r.opID.Hex(),
	})

	users := make(map[string]string, len(lobby.Users))
	for _, u := range lobby.Users {
		users[u.ID.Hex()] = string(u.Role)
	}
	r.publishRealtime(
		centrifugo.NewPublish(centrifugo.LobbyChannel(lobby.ID), map[string]any{
			"type":    "user_joined",
			"user_id": cmd.UserID.Hex(),
		}),
		centrifugo.NewPublish(centrifugo.UserChannel(cmd.UserID), map[string]any{
			"type":  "joined_to_lobby",
			"users": users,
		}),
	)

	r.Log.WithFields(logrus.Fields{
		"lobby_id": lobby.ID.Hex(),
		"user_id":  cmd.UserID.Hex(),
	}).Info("user joined lobby")
	return nil
}
