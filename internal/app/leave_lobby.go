// internal/app/leave_lobby.go
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

type LeaveLobbyCommand struct {
	UserID domain.UserID
}

// LeaveLobby removes the caller from their lobby, transferring the
// admin role if needed.
func (r *Request) LeaveLobby(ctx context.Context, cmd LeaveLobbyCommand) error {
	if cmd.UserID.IsZero() {
		return ErrMissingUserID
	}

	lobby, err := r.Lobbies.ByUserID(ctx, cmd.UserID, true)
	if err != nil {
		return err
	}
	if lobby == nil {
		return ErrCurrentUserNotInLobby
	}

	empty, newAdmin, err := r.removeUserFromLobby(ctx, lobby, cmd.UserID)
	if err != nil {
		return err
	}

	ev := events.UserLeftLobby{
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
			"type":    "user_left",
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
	}).Info("user left lobby")
	return nil
}

// removeUserFromLobby is the shared core of LeaveLobby, RemoveFromLobby
// and KickFromLobby: apply the domain transition, persist or delete,
// and drop the user's pending presence task.
func (r *Request) removeUserFromLobby(ctx context.Context, lobby *domain.Lobby, userID domain.UserID) (empty bool, newAdmin domain.UserID, err error) {
	empty, newAdmin, err = lobby.Remove(userID)
	if err != nil {
		return false, domain.UserID{}, err
	}

	if empty {
		err = r.Lobbies.Delete(ctx, lobby)
	} else {
		err = r.Lobbies.Update(ctx, lobby)
	}
	if err != nil {
		return false, domain.UserID{}, err
	}

	if err := r.Tasks.Unschedule(ctx, scheduling.RemoveFromLobbyTaskID(lobby.ID, userID)); err != nil {
		return false, domain.UserID{}, err
	}
	return empty, newAdmin, nil
}
