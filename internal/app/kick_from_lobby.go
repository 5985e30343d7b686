// internal/app/kick_from_lobby.go
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

type KickFromLobbyCommand struct {
	UserID       domain.UserID
	UserToKickID domain.UserID
}

// KickFromLobby lets the lobby admin eject another member. The kicked
// user is never the admin, so no succession happens and the lobby
// cannot end up empty.
func (r *Request) KickFromLobby(ctx context.Context, cmd KickFromLobbyCommand) error {
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

	if err := lobby.Kick(cmd.UserToKickID, cmd.UserID); err != nil {
		return err
	}
	if err := r.Lobbies.Update(ctx, lobby); err != nil {
		return err
	}
	if err := r.Tasks.Unschedule(ctx, scheduling.RemoveFromLobbyTaskID(lobby.ID, cmd.UserToKickID)); err != nil {
		return err
	}

	r.publishEvent(events.UserKickedFromLobby{
		LobbyID:     lobby.ID.Hex(),
		UserID:      cmd.UserToKickID.Hex(),
		OperationID: r.opID.Hex(),
	})

	lobbyChannel := centrifugo.LobbyChannel(lobby.ID)
	r.publishRealtime(
		centrifugo.NewPublish(lobbyChannel, map[string]any{
			"type":    "user_kicked",
			"user_id": cmd.UserToKickID.Hex(),
		}),
		centrifugo.NewUnsubscribe(cmd.UserToKickID, lobbyChannel),
	)

	r.Log.WithFields(logrus.Fields{
		"lobby_id":        lobby.ID.Hex(),
		"user_id":         cmd.UserID.Hex(),
		"user_to_kick_id": cmd.UserToKickID.Hex(),
	}).Info("user kicked from lobby")
	return nil
}
