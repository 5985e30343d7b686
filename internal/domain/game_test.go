// internal/domain/game_test.go
package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T) (*Game, UserID, UserID) {
	t.Helper()
	admin := newUserID()
	joiner := newUserID()
	lobby := NewLobby("test", admin, ConnectFourRuleSet{TimeForEachPlayer: time.Minute}, "")
	require.NoError(t, lobby.Join(joiner, ""))

	game, err := NewGameFromLobby(lobby, admin)
	require.NoError(t, err)
	return game, admin, joiner
}

func TestNewGameFromLobby(t *testing.T) {
	game, admin, joiner := newTestGame(t)

	require.Len(t, game.Players, 2)
	assert.Equal(t, []UserID{admin, joiner}, game.PlayerIDs())
	for _, p := range game.Players {
		assert.Equal(t, PlayerConnected, p.State.Status)
		assert.Equal(t, ReconnectBudget, p.State.TimeLeft)
		assert.False(t, p.State.ID.IsZero())
	}
	assert.NotEqual(t, game.Players[0].State.ID, game.Players[1].State.ID)
}

func TestNewGameFromLobbyRequiresAdmin(t *testing.T) {
	admin := newUserID()
	joiner := newUserID()
	lobby := NewLobby("test", admin, ConnectFourRuleSet{TimeForEachPlayer: time.Minute}, "")
	require.NoError(t, lobby.Join(joiner, ""))

	_, err := NewGameFromLobby(lobby, joiner)
	assert.ErrorIs(t, err, ErrUserIsNotAdmin)

	_, err = NewGameFromLobby(lobby, newUserID())
	assert.ErrorIs(t, err, ErrUserNotInLobby)
}

func TestNewGameFromLobbyRequiresFullRoster(t *testing.T) {
	admin := newUserID()
	lobby := NewLobby("test", admin, ConnectFourRuleSet{TimeForEachPlayer: time.Minute}, "")

	_, err := NewGameFromLobby(lobby, admin)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestDisconnectRotatesStateID(t *testing.T) {
	game, admin, _ := newTestGame(t)
	before, ok := game.StateOf(admin)
	require.True(t, ok)

	require.NoError(t, game.Disconnect(admin))

	after, ok := game.StateOf(admin)
	require.True(t, ok)
	assert.Equal(t, PlayerDisconnected, after.Status)
	assert.NotEqual(t, before.ID, after.ID)

	assert.ErrorIs(t, game.Disconnect(admin), ErrUserIsDisconnectedFromGame)
}

func TestReconnectRotatesStateID(t *testing.T) {
	game, admin, _ := newTestGame(t)
	assert.ErrorIs(t, game.Reconnect(admin), ErrUserIsConnectedToGame)

	require.NoError(t, game.Disconnect(admin))
	disconnected, _ := game.StateOf(admin)

	require.NoError(t, game.Reconnect(admin))
	reconnected, _ := game.StateOf(admin)
	assert.Equal(t, PlayerConnected, reconnected.Status)
	assert.NotEqual(t, disconnected.ID, reconnected.ID)
}

func TestTryToDisqualifyStaleStateIDIsNoOp(t *testing.T) {
	game, admin, _ := newTestGame(t)

	require.NoError(t, game.Disconnect(admin))
	armed, _ := game.StateOf(admin)

	// The player came back before the timer fired.
	require.NoError(t, game.Reconnect(admin))

	disqualified, ended, err := game.TryToDisqualify(admin, armed.ID)
	require.NoError(t, err)
	assert.False(t, disqualified)
	assert.False(t, ended)
	assert.True(t, game.Contains(admin))
}

func TestTryToDisqualifyRemovesPlayerAndEndsGame(t *testing.T) {
	game, admin, joiner := newTestGame(t)

	require.NoError(t, game.Disconnect(admin))
	state, _ := game.StateOf(admin)

	disqualified, ended, err := game.TryToDisqualify(admin, state.ID)
	require.NoError(t, err)
	assert.True(t, disqualified)
	// Two-player minimum: losing one player ends the game.
	assert.True(t, ended)
	assert.False(t, game.Contains(admin))
	assert.True(t, game.Contains(joiner))
}

func TestTryToDisqualifyUnknownPlayer(t *testing.T) {
	game, _, _ := newTestGame(t)

	_, _, err := game.TryToDisqualify(newUserID(), NewPlayerStateID())
	assert.ErrorIs(t, err, ErrUserNotInGame)
}
