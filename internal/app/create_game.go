// internal/app/create_game.go
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

type CreateGameCommand struct {
	UserID  domain.UserID
	LobbyID domain.LobbyID
}

// CreateGame promotes a full lobby into a game. The lobby is consumed
// in the same transaction: members stop being lobby users and become
// players, their lobby presence tasks are replaced with game ones.
func (r *Request) CreateGame(ctx context.Context, cmd CreateGameCommand) (domain.GameID, error) {
	if cmd.UserID.IsZero() {
		return domain.GameID{}, ErrMissingUserID
	}

	lobby, err := r.Lobbies.ByID(ctx, cmd.LobbyID, true)
	if err != nil {
		return domain.GameID{}, err
	}
	if lobby == nil {
		return domain.GameID{}, ErrLobbyDoesNotExist
	}

	game, err := domain.NewGameFromLobby(lobby, cmd.UserID)
	if err != nil {
		return domain.GameID{}, err
	}

	if err := r.Games.Save(ctx, game); err != nil {
		return domain.GameID{}, err
	}
	if err := r.Lobbies.Delete(ctx, lobby); err != nil {
		return domain.GameID{}, err
	}

	unschedule := make([]string, 0, len(game.Players))
	schedule := make([]scheduling.Task, 0, len(game.Players))
	deadline := time.Now().Add(PresenceGraceWindow)
	for _, p := range game.Players {
		unschedule = append(unschedule, scheduling.RemoveFromLobbyTaskID(lobby.ID, p.ID))
		schedule = append(schedule, scheduling.DisconnectFromGameTask{
			GameID:      game.ID,
			PlayerID:    p.ID,
			OperationID: r.opID,
			ExecuteAt:   deadline,
		})
	}
	if err := r.Tasks.UnscheduleMany(ctx, unschedule); err != nil {
		return domain.GameID{}, err
	}
	if err := r.Tasks.ScheduleMany(ctx, schedule); err != nil {
		return domain.GameID{}, err
	}

	ruleSet, err := events.NewRuleSetPayload(game.RuleSet)
	if err != nil {
		return domain.GameID{}, err
	}
	r.publishEvent(events.ConnectFourGameCreated{
		GameID:            game.ID.Hex(),
		LobbyID:           lobby.ID.Hex(),
		FirstPlayerID:     game.Players[0].ID.Hex(),
		SecondPlayerID:    game.Players[1].ID.Hex(),
		TimeForEachPlayer: ruleSet.TimeForEachPlayer,
		CreatedAt:         game.CreatedAt,
		OperationID:       r.opID.Hex(),
	})

	r.publishRealtime(
		centrifugo.NewPublish(centrifugo.LobbyChannel(lobby.ID), map[string]any{
			"type":     "connect_four_game_created",
			"game_id":  game.ID.Hex(),
			"rule_set": ruleSet,
		}),
	)

	r.Log.WithFields(logrus.Fields{
		"lobby_id": lobby.ID.Hex(),
		"game_id":  game.ID.Hex(),
	}).Info("game created from lobby")
	return game.ID, nil
}
