// internal/events/events.go
package events

import (
	"fmt"
	"time"

	"github.com/gaems12/connection-hub/internal/domain"
)

// Event is an integration event bound for the durable bus. Every event
// carries the operation id of the request that produced it.
type Event interface {
	Subject() string
}

// RuleSetPayload is the wire shape of a rule-set variant.
type RuleSetPayload struct {
	Type              string  `json:"type"`
	TimeForEachPlayer float64 `json:"time_for_each_player"`
}

// NewRuleSetPayload converts a domain rule set to its wire shape.
func NewRuleSetPayload(rs domain.RuleSet) (RuleSetPayload, error) {
	switch v := rs.(type) {
	case domain.ConnectFourRuleSet:
		return RuleSetPayload{
			Type:              string(v.Type()),
			TimeForEachPlayer: v.TimeForEachPlayer.Seconds(),
		}, nil
	default:
		return RuleSetPayload{}, fmt.Errorf("unknown rule set %T", rs)
	}
}

type LobbyCreated struct {
	LobbyID     string         `json:"lobby_id"`
	Name        string         `json:"name"`
	AdminID     string         `json:"admin_id"`
	HasPassword bool           `json:"has_password"`
	RuleSet     RuleSetPayload `json:"rule_set"`
	OperationID string         `json:"operation_id"`
}

func (LobbyCreated) Subject() string { return "connection_hub.lobby.created" }

type UserJoinedLobby struct {
	LobbyID     string `json:"lobby_id"`
	UserID      string `json:"user_id"`
	OperationID string `json:"operation_id"`
}

func (UserJoinedLobby) Subject() string { return "connection_hub.lobby.user_joined" }

type UserLeftLobby struct {
	LobbyID     string `json:"lobby_id"`
	UserID      string `json:"user_id"`
	NewAdminID  string `json:"new_admin_id,omitempty"`
	OperationID string `json:"operation_id"`
}

func (UserLeftLobby) Subject() string { return "connection_hub.lobby.user_left" }

// UserRemovedFromLobby is the presence-timeout variant of UserLeftLobby.
type UserRemovedFromLobby struct {
	LobbyID     string `json:"lobby_id"`
	UserID      string `json:"user_id"`
	NewAdminID  string `json:"new_admin_id,omitempty"`
	OperationID string `json:"operation_id"`
}

func (UserRemovedFromLobby) Subject() string { return "connection_hub.lobby.user_removed" }

type UserKickedFromLobby struct {
	LobbyID     string `json:"lobby_id"`
	UserID      string `json:"user_id"`
	OperationID string `json:"operation_id"`
}

func (UserKickedFromLobby) Subject() string { return "connection_hub.lobby.user_kicked" }

type ConnectFourGameCreated struct {
	GameID            string    `json:"game_id"`
	LobbyID           string    `json:"lobby_id"`
	FirstPlayerID     string    `json:"first_player_id"`
	SecondPlayerID    string    `json:"second_player_id"`
	TimeForEachPlayer float64   `json:"time_for_each_player"`
	CreatedAt         time.Time `json:"created_at"`
	OperationID       string    `json:"operation_id"`
}

func (ConnectFourGameCreated) Subject() string {
	return "connection_hub.connect_four.game.created"
}

type PlayerDisconnected struct {
	GameID      string `json:"game_id"`
	PlayerID    string `json:"player_id"`
	OperationID string `json:"operation_id"`
}

func (PlayerDisconnected) Subject() string {
	return "connection_hub.connect_four.game.player_disconnected"
}

type PlayerReconnected struct {
	GameID      string `json:"game_id"`
	PlayerID    string `json:"player_id"`
	OperationID string `json:"operation_id"`
}

func (PlayerReconnected) Subject() string {
	return "connection_hub.connect_four.game.player_reconnected"
}

type PlayerDisqualified struct {
	GameID      string `json:"game_id"`
	PlayerID    string `json:"player_id"`
	OperationID string `json:"operation_id"`
}

func (PlayerDisqualified) Subject() string {
	return "connection_hub.connect_four.game.player_disqualified"
}
