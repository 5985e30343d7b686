// internal/app/remove_from_lobby.go
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
)

type RemoveFromLobbyCommand struct {
	LobbyID domain.LobbyID
	UserID  domain.UserID
}

// RemoveFromLobby evicts a user whose presence window elapsed. Fired by
// the deferred task runner, never by the gateway directly.
func (r *Request) RemoveFromLobby(ctx context.Context, cmd RemoveFromLobbyCommand) error {
	lobby, err := r.Lobbies.ByID(ctx, cmd.LobbyID, true)
	if err != nil {
		return err
	}
	if lobby == nil {
		return ErrLobbyDoesNotExist
	}
	if !lobby.Contains(cmd.UserID) {
		return ErrUserNotInLobby
	}

	empty, newAdmin, err := r.removeUserFromLobby(ctx, lobby, cmd.UserID)
	if err != nil {
		return err
	}

	ev := events.UserRemovedFromLobby{
		LobbyID:     lobby.ID.Hex(),
		UserID:      cmd.UserID.Hex(),
		OperationID: r.opID.Hex(),
	}
	if !newAdmin.IsZero() {
		ev.NewAdminID = newAdmin.Hex()
	}
	r.publishEvent(ev)

	lobbyChannel := centrifugo.LobbyChannel(lobby.ID)
	cmds := []centrifugo.Command{
		centrifugo.NewUnsubscribe(cmd.UserID, lobbyChannel),
	}
	if !empty {
		data := map[string]any{
			"type":    "user_removed",
			"user_id": cmd.UserID.Hex(),
		}
		if !newAdmin.IsZero() {
			data["new_admin_id"] = newAdmin.Hex()
		}
		cmds = append(cmds, centrifugo.NewPublish(lobbyChannel, data))
	}
	r.publishRealtime(cmds...)

	r.Log.WithFields(logrus.Fields{
		"lobby_id": lobby.ID.Hex(),
		"user_id":  cmd.UserID.Hex(),
	}).Info("user removed from lobby")
	return nil
}
