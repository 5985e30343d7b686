// internal/app/acknowledge_presence.go
package app

import (
	"context"
	"time"

	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

type AcknowledgePresenceCommand struct {
	UserID domain.UserID
}

// AcknowledgePresence is the heartbeat: it pushes the user's pending
// presence deadline out by the grace window. Deterministic task ids
// make this idempotent, a reschedule just moves the deadline. A
// heartbeat from a user with no lobby or game is a no-op.
func (r *Request) AcknowledgePresence(ctx context.Context, cmd AcknowledgePresenceCommand) error {
	if cmd.UserID.IsZero() {
		return ErrMissingUserID
	}

	deadline := time.Now().Add(PresenceGraceWindow)

	lobby, err := r.Lobbies.ByUserID(ctx, cmd.UserID, false)
	if err != nil {
		return err
	}
	if lobby != nil {
		return r.Tasks.Schedule(ctx, scheduling.RemoveFromLobbyTask{
			LobbyID:     lobby.ID,
			UserID:      cmd.UserID,
			OperationID: r.opID,
			ExecuteAt:   deadline,
		})
	}

	game, err := r.Games.ByPlayerID(ctx, cmd.UserID, false)
	if err != nil {
		return err
	}
	if game != nil {
		return r.Tasks.Schedule(ctx, scheduling.DisconnectFromGameTask{
			GameID:      game.ID,
			PlayerID:    cmd.UserID,
			OperationID: r.opID,
			ExecuteAt:   deadline,
		})
	}

	return nil
}
