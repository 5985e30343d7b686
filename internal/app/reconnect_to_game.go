// internal/app/reconnect_to_game.go
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

type ReconnectToGameCommand struct {
	PlayerID domain.UserID
}

// ReconnectToGame marks a player connected again and disarms the
// disqualification timer bound to their pre-reconnect state id.
func (r *Request) ReconnectToGame(ctx context.Context, cmd ReconnectToGameCommand) error {
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

	// The pending timer is keyed by the state id in force while the
	// player was disconnected; capture it before Reconnect rotates it.
	prev, _ := game.StateOf(cmd.PlayerID)

	if err := game.Reconnect(cmd.PlayerID); err != nil {
		return err
	}
	if err := r.Games.Update(ctx, game); err != nil {
		return err
	}

	if err := r.Tasks.Unschedule(ctx, scheduling.TryToDisqualifyPlayerTaskID(prev.ID)); err != nil {
		return err
	}

	r.publishEvent(events.PlayerReconnected{
		GameID:      game.ID.Hex(),
		PlayerID:    cmd.PlayerID.Hex(),
		OperationID: r.opID.Hex(),
	})

	r.publishRealtime(
		centrifugo.NewPublish(centrifugo.GameChannel(game.ID), map[string]any{
			"type":      "player_reconnected",
			"player_id": cmd.PlayerID.Hex(),
		}),
	)

	r.Log.WithFields(logrus.Fields{
		"game_id":   game.ID.Hex(),
		"player_id": cmd.PlayerID.Hex(),
	}).Info("player reconnected to game")
	return nil
}
