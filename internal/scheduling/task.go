// internal/scheduling/task.go
package scheduling

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gaems12/connection-hub/internal/domain"
)

// Kind tags a task variant in its id and stored payload.
type Kind string

const (
	KindRemoveFromLobby       Kind = "remove_from_lobby"
	KindDisconnectFromGame    Kind = "disconnect_from_game"
	KindTryToDisqualifyPlayer Kind = "try_to_disqualify_player"
)

// Task is a persistent deferred action. Task ids are deterministic:
// scheduling the same id again replaces the previous deadline, which is
// what makes presence heartbeats idempotent, and a leave or reconnect
// can delete the pending task by recomputing the same id.
type Task interface {
	TaskID() string
	Deadline() time.Time
}

// RemoveFromLobbyTask removes a user whose presence window lapsed.
// One per (lobby, user): rescheduling moves the deadline.
type RemoveFromLobbyTask struct {
	LobbyID     domain.LobbyID
	UserID      domain.UserID
	OperationID domain.OperationID
	ExecuteAt   time.Time
}

func (t RemoveFromLobbyTask) TaskID() string {
	return RemoveFromLobbyTaskID(t.LobbyID, t.UserID)
}

func (t RemoveFromLobbyTask) Deadline() time.Time { return t.ExecuteAt }

func RemoveFromLobbyTaskID(lobbyID domain.LobbyID, userID domain.UserID) string {
	return string(KindRemoveFromLobby) + ":" + lobbyID.Hex() + ":" + userID.Hex()
}

// DisconnectFromGameTask marks a player disconnected when their
// presence window lapses. One per (game, player).
type DisconnectFromGameTask struct {
	GameID      domain.GameID
	PlayerID    domain.UserID
	OperationID domain.OperationID
	ExecuteAt   time.Time
}

func (t DisconnectFromGameTask) TaskID() string {
	return DisconnectFromGameTaskID(t.GameID, t.PlayerID)
}

func (t DisconnectFromGameTask) Deadline() time.Time { return t.ExecuteAt }

func DisconnectFromGameTaskID(gameID domain.GameID, playerID domain.UserID) string {
	return string(KindDisconnectFromGame) + ":" + gameID.Hex() + ":" + playerID.Hex()
}

// TryToDisqualifyPlayerTask disqualifies a player unless their state id
// has rotated since the task was armed. The id is bound to the state
// epoch, not the player, so a reconnect or a newer disconnect strands
// the old task harmlessly.
type TryToDisqualifyPlayerTask struct {
	GameID        domain.GameID
	PlayerID      domain.UserID
	PlayerStateID domain.PlayerStateID
	OperationID   domain.OperationID
	ExecuteAt     time.Time
}

func (t TryToDisqualifyPlayerTask) TaskID() string {
	return TryToDisqualifyPlayerTaskID(t.PlayerStateID)
}

func (t TryToDisqualifyPlayerTask) Deadline() time.Time { return t.ExecuteAt }

func TryToDisqualifyPlayerTaskID(stateID domain.PlayerStateID) string {
	return string(KindTryToDisqualifyPlayer) + ":" + stateID.Hex()
}

// envelope is the stored payload shape shared by all task kinds.
type envelope struct {
	Kind          Kind      `json:"kind"`
	ExecuteAt     time.Time `json:"execute_at"`
	LobbyID       string    `json:"lobby_id,omitempty"`
	GameID        string    `json:"game_id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	PlayerStateID string    `json:"player_state_id,omitempty"`
	OperationID   string    `json:"operation_id,omitempty"`
}

// EncodeTask serializes a task for storage.
func EncodeTask(task Task) ([]byte, error) {
	var env envelope
	switch t := task.(type) {
	case RemoveFromLobbyTask:
		env = envelope{
			Kind:        KindRemoveFromLobby,
			ExecuteAt:   t.ExecuteAt,
			LobbyID:     t.LobbyID.Hex(),
			UserID:      t.UserID.Hex(),
			OperationID: t.OperationID.Hex(),
		}
	case DisconnectFromGameTask:
		env = envelope{
			Kind:        KindDisconnectFromGame,
			ExecuteAt:   t.ExecuteAt,
			GameID:      t.GameID.Hex(),
			UserID:      t.PlayerID.Hex(),
			OperationID: t.OperationID.Hex(),
		}
	case TryToDisqualifyPlayerTask:
		env = envelope{
			Kind:          KindTryToDisqualifyPlayer,
			ExecuteAt:     t.ExecuteAt,
			GameID:        t.GameID.Hex(),
			UserID:        t.PlayerID.Hex(),
			PlayerStateID: t.PlayerStateID.Hex(),
			OperationID:   t.OperationID.Hex(),
		}
	default:
		return nil, fmt.Errorf("encode task: unknown type %T", task)
	}
	return json.Marshal(env)
}

// DecodeTask deserializes a stored task payload.
func DecodeTask(raw []byte) (Task, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}

	opID := domain.OperationID{}
	if env.OperationID != "" {
		parsed, err := domain.ParseOperationID(env.OperationID)
		if err != nil {
			return nil, err
		}
		opID = parsed
	}

	switch env.Kind {
	case KindRemoveFromLobby:
		lobbyID, err := domain.ParseLobbyID(env.LobbyID)
		if err != nil {
			return nil, err
		}
		userID, err := domain.ParseUserID(env.UserID)
		if err != nil {
			return nil, err
		}
		return RemoveFromLobbyTask{
			LobbyID:     lobbyID,
			UserID:      userID,
			OperationID: opID,
			ExecuteAt:   env.ExecuteAt,
		}, nil

	case KindDisconnectFromGame:
		gameID, err := domain.ParseGameID(env.GameID)
		if err != nil {
			return nil, err
		}
		playerID, err := domain.ParseUserID(env.UserID)
		if err != nil {
			return nil, err
		}
		return DisconnectFromGameTask{
			GameID:      gameID,
			PlayerID:    playerID,
			OperationID: opID,
			ExecuteAt:   env.ExecuteAt,
		}, nil

	case KindTryToDisqualifyPlayer:
		gameID, err := domain.ParseGameID(env.GameID)
		if err != nil {
			return nil, err
		}
		playerID, err := domain.ParseUserID(env.UserID)
		if err != nil {
			return nil, err
		}
		stateID, err := domain.ParsePlayerStateID(env.PlayerStateID)
		if err != nil {
			return nil, err
		}
		return TryToDisqualifyPlayerTask{
			GameID:        gameID,
			PlayerID:      playerID,
			PlayerStateID: stateID,
			OperationID:   opID,
			ExecuteAt:     env.ExecuteAt,
		}, nil

	default:
		return nil, fmt.Errorf("decode task: unknown kind %q", env.Kind)
	}
}
