// internal/app/end_game.go
package app

import (
	"context"

	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

type EndGameCommand struct {
	GameID domain.GameID
}

// EndGame tears down a finished game: the record is deleted and every
// pending presence and disqualification timer for its players is
// cancelled. Triggered by the rules service announcing a result.
func (r *Request) EndGame(ctx context.Context, cmd EndGameCommand) error {
	game, err := r.Games.ByID(ctx, cmd.GameID, true)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameDoesNotExist
	}

	if err := r.Games.Delete(ctx, game); err != nil {
		return err
	}

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

	r.Log.WithField("game_id", game.ID.Hex()).Info("game ended")
	return nil
}
