// internal/app/try_to_disqualify_player.go
package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

type TryToDisqualifyPlayerCommand struct {
	GameID        domain.GameID
	PlayerID      domain.UserID
	PlayerStateID domain.PlayerStateID
}

// TryToDisqualifyPlayer removes a player whose reconnect budget ran
// out. The fire is conditional on the state id it was armed with: if
// the player toggled connectivity since, the task is stale and nothing
// happens. Fired only by the deferred task runner.
func (r *Request) TryToDisqualifyPlayer(ctx context.Context, cmd TryToDisqualifyPlayerCommand) error {
	game, err := r.Games.ByID(ctx, cmd.GameID, true)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameDoesNotExist
	}
	if !game.Contains(cmd.PlayerID) {
		return ErrUserNotInGame
	}

	disqualified, ended, err := game.TryToDisqualify(cmd.PlayerID, cmd.PlayerStateID)
	if err != nil {
		return err
	}
	if !disqualified {
		r.Log.WithFields(logrus.Fields{
			"game_id":   game.ID.Hex(),
			"player_id": cmd.PlayerID.Hex(),
		}).Debug("stale disqualification timer ignored")
		return nil
	}

	if ended {
		if err := r.Games.Delete(ctx, game); err != nil {
			return err
		}
		// Cancel the survivors' pending timers along with the game.
		taskIDs := make([]string, 0, 2*len(game.Players))
		for _, p := range game.Players {
			taskIDs = append(taskIDs,
				scheduling.DisconnectFromGameTaskID(game.ID, p.ID),
				scheduling.TryToDisqualifyPlayerTaskID(p.State.ID),
			)
		}
		if err := r.Tasks.UnscheduleMany(ctx, taskIDs); err != nil {
			return err
		}
	} else {
		if err := r.Games.Update(ctx, game); err != nil {
			return err
		}
	}

	r.publishEvent(events.PlayerDisqualified{
		GameID:      game.ID.Hex(),
		PlayerID:    cmd.PlayerID.Hex(),
		OperationID: r.opID.Hex(),
	})

	r.publishRealtime(
		centrifugo.NewPublish(centrifugo.GameChannel(game.ID), map[string]any{
			"type":      "player_disqualified",
			"player_id": cmd.PlayerID.Hex(),
		}),
	)

	r.Log.WithFields(logrus.Fields{
		"game_id":    game.ID.Hex(),
		"player_id":  cmd.PlayerID.Hex(),
		"game_ended": ended,
	}).Info("player disqualified")
	return nil
}
