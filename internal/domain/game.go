// internal/domain/game.go
package domain

import "time"

// PlayerStatus is a player's connectivity inside a game.
type PlayerStatus string

const (
	PlayerConnected    PlayerStatus = "connected"
	PlayerDisconnected PlayerStatus = "disconnected"
)

// ReconnectBudget is the initial time a player may spend disconnected
// before disqualification; also the first disqualification deadline.
const ReconnectBudget = 40 * time.Second

// PlayerState is one player's connectivity snapshot. Its ID rotates on
// every status toggle so that a timer armed against an older epoch can
// recognize itself as stale.
type PlayerState struct {
	ID       PlayerStateID
	Status   PlayerStatus
	TimeLeft time.Duration
}

// Player is one entry of a game's ordered roster.
type Player struct {
	ID    UserID
	State PlayerState
}

// Game is an active match. The roster starts at RuleSet.MaxPlayers()
// and the game continues while it holds at least RuleSet.MinPlayers().
type Game struct {
	ID        GameID
	RuleSet   RuleSet
	Players   []Player
	CreatedAt time.Time
}

// NewGameFromLobby promotes a lobby into a game. Callers must have
// verified the caller's admin role. Roster order follows lobby
// insertion order; every player starts connected with a fresh state id
// and the full reconnect budget.
func NewGameFromLobby(lobby *Lobby, caller UserID) (*Game, error) {
	role, ok := lobby.RoleOf(caller)
	if !ok {
		return nil, ErrUserNotInLobby
	}
	if role != RoleAdmin {
		return nil, ErrUserIsNotAdmin
	}
	if len(lobby.Users) < lobby.RuleSet.MinPlayers() {
		return nil, ErrNotEnoughPlayers
	}

	players := make([]Player, 0, len(lobby.Users))
	for _, u := range lobby.Users {
		players = append(players, Player{
			ID: u.ID,
			State: PlayerState{
				ID:       NewPlayerStateID(),
				Status:   PlayerConnected,
				TimeLeft: ReconnectBudget,
			},
		})
	}

	return &Game{
		ID:        NewGameID(),
		RuleSet:   lobby.RuleSet,
		Players:   players,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Contains reports whether the user is a player in the game.
func (g *Game) Contains(userID UserID) bool {
	return g.player(userID) != nil
}

// StateOf returns the player's state. ok is false if the user is not a
// player.
func (g *Game) StateOf(userID UserID) (PlayerState, bool) {
	p := g.player(userID)
	if p == nil {
		return PlayerState{}, false
	}
	return p.State, true
}

// PlayerIDs returns roster ids in order.
func (g *Game) PlayerIDs() []UserID {
	ids := make([]UserID, 0, len(g.Players))
	for _, p := range g.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// Disconnect marks the player disconnected and rotates their state id,
// invalidating any disqualification timer armed against the old id.
func (g *Game) Disconnect(userID UserID) error {
	p := g.player(userID)
	if p == nil {
		return ErrUserNotInGame
	}
	if p.State.Status == PlayerDisconnected {
		return ErrUserIsDisconnectedFromGame
	}
	p.State.ID = NewPlayerStateID()
	p.State.Status = PlayerDisconnected
	return nil
}

// Reconnect marks the player connected and rotates their state id.
func (g *Game) Reconnect(userID UserID) error {
	p := g.player(userID)
	if p == nil {
		return ErrUserNotInGame
	}
	if p.State.Status == PlayerConnected {
		return ErrUserIsConnectedToGame
	}
	p.State.ID = NewPlayerStateID()
	p.State.Status = PlayerConnected
	return nil
}

// TryToDisqualify removes the player iff their current state id still
// matches expectedStateID. A mismatch means the player toggled
// connectivity after the timer was armed, so the fire is stale and a
// no-op. Returns whether the player was disqualified and whether the
// roster dropped below the minimum, ending the game.
func (g *Game) TryToDisqualify(userID UserID, expectedStateID PlayerStateID) (disqualified, ended bool, err error) {
	p := g.player(userID)
	if p == nil {
		return false, false, ErrUserNotInGame
	}
	if p.State.ID != expectedStateID {
		return false, false, nil
	}

	players := g.Players[:0]
	for _, other := range g.Players {
		if other.ID != userID {
			players = append(players, other)
		}
	}
	g.Players = players

	return true, len(g.Players) < g.RuleSet.MinPlayers(), nil
}

func (g *Game) player(userID UserID) *Player {
	for i := range g.Players {
		if g.Players[i].ID == userID {
			return &g.Players[i]
		}
	}
	return nil
}
