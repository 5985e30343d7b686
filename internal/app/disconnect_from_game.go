// internal/app/disconnect_from_game.go
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

type DisconnectFromGameCommand struct {
	PlayerID domain.UserID
}

// DisconnectFromGame marks a player disconnected and arms their
// disqualification timer for the time left in their reconnect budget.
// Fired by the deferred task runner or by an explicit gateway event.
func (r *Request) DisconnectFromGame(ctx context.Context, cmd DisconnectFromGameCommand) error {
	if cmd.PlayerID.IsZero() {
		return ErrMissingUserID
	}

	game, err := r.Games.ByPlayerID(ctx, cmd.PlayerID, true)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrCurrentUserNotInGame
	}

	if err := game.Disconnect(cmd.PlayerID); err != nil {
		return err
	}
	if err := r.Games.Update(ctx, game); err != nil {
		return err
	}

	state, _ := game.StateOf(cmd.PlayerID)
	err = r.Tasks.Schedule(ctx, scheduling.TryToDisqualifyPlayerTask{
		GameID:        game.ID,
		PlayerID:      cmd.PlayerID,
		PlayerStateID: state.ID,
		OperationID:   r.opID,
		ExecuteAt:     time.Now().Add(state.TimeLeft),
	})
	if err != nil {
		return err
	}

	r.publishEvent(events.PlayerDisconnected{
		GameID:      game.ID.Hex(),
		PlayerID:    cmd.PlayerID.Hex(),
		OperationID: r.opID.Hex(),
	})

	r.publishRealtime(
		centrifugo.NewPublish(centrifugo.GameChannel(game.ID), map[string]any{
			"type":      "player_disconnected",
			"player_id": cmd.PlayerID.Hex(),
		}),
	)

	r.Log.WithFields(logrus.Fields{
		"game_id":   game.ID.Hex(),
		"player_id": cmd.PlayerID.Hex(),
	}).Info("player disconnected from game")
	return nil
}
