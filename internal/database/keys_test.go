// internal/database/keys_test.go
package database

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaems12/connection-hub/internal/domain"
)

func TestLobbyKeyIsOrderIndependent(t *testing.T) {
	lobbyID := domain.NewLobbyID()
	a, err := domain.ParseUserID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.NoError(t, err)
	b, err := domain.ParseUserID("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	require.NoError(t, err)

	assert.Equal(t,
		lobbyKey(lobbyID, []domain.UserID{a, b}),
		lobbyKey(lobbyID, []domain.UserID{b, a}),
	)
	assert.Equal(t,
		"lobbies:id:"+lobbyID.Hex()+":user_ids:"+a.Hex()+":"+b.Hex(),
		lobbyKey(lobbyID, []domain.UserID{b, a}),
	)
}

func TestFindPatternsMatchEntityKeys(t *testing.T) {
	lobbyID := domain.NewLobbyID()
	gameID := domain.NewGameID()
	user := domain.UserID(domain.NewLobbyID())

	assert.True(t, strings.HasPrefix(
		lobbyKey(lobbyID, []domain.UserID{user}),
		strings.TrimSuffix(lobbyByIDPattern(lobbyID), "*"),
	))
	assert.Contains(t, lobbyByUserIDPattern(user), user.Hex())
	assert.True(t, strings.HasPrefix(
		gameKey(gameID, []domain.UserID{user}),
		strings.TrimSuffix(gameByIDPattern(gameID), "*"),
	))
	assert.Contains(t, gameByPlayerIDPattern(user), user.Hex())
}

func TestLockIDsOmitMemberSet(t *testing.T) {
	lobbyID := domain.NewLobbyID()
	gameID := domain.NewGameID()

	// Lock ids must be stable across membership changes, so they carry
	// only the entity id.
	assert.Equal(t, "lobbies:id:"+lobbyID.Hex(), lobbyLockID(lobbyID))
	assert.Equal(t, "games:id:"+gameID.Hex(), gameLockID(gameID))
}

func TestLobbyRecordRoundTrip(t *testing.T) {
	admin := domain.UserID(domain.NewLobbyID())
	lobby := domain.NewLobby("evening games", admin, domain.ConnectFourRuleSet{TimeForEachPlayer: 90 * time.Second}, "hashed")
	joiner := domain.UserID(domain.NewLobbyID())
	require.NoError(t, lobby.Join(joiner, ""))

	raw, err := encodeLobby(lobby)
	require.NoError(t, err)

	decoded, err := decodeLobby(raw)
	require.NoError(t, err)
	assert.Equal(t, lobby.ID, decoded.ID)
	assert.Equal(t, lobby.Name, decoded.Name)
	assert.Equal(t, lobby.Users, decoded.Users)
	assert.Equal(t, lobby.AdminQueue, decoded.AdminQueue)
	assert.Equal(t, lobby.PasswordHash, decoded.PasswordHash)
	assert.Equal(t, lobby.RuleSet, decoded.RuleSet)
}

func TestGameRecordRoundTrip(t *testing.T) {
	admin := domain.UserID(domain.NewLobbyID())
	joiner := domain.UserID(domain.NewLobbyID())
	lobby := domain.NewLobby("evening games", admin, domain.ConnectFourRuleSet{TimeForEachPlayer: time.Minute}, "")
	require.NoError(t, lobby.Join(joiner, ""))
	game, err := domain.NewGameFromLobby(lobby, admin)
	require.NoError(t, err)
	require.NoError(t, game.Disconnect(joiner))

	raw, err := encodeGame(game)
	require.NoError(t, err)

	decoded, err := decodeGame(raw)
	require.NoError(t, err)
	assert.Equal(t, game.ID, decoded.ID)
	assert.Equal(t, game.RuleSet, decoded.RuleSet)
	assert.Equal(t, game.Players, decoded.Players)
	assert.WithinDuration(t, game.CreatedAt, decoded.CreatedAt, time.Millisecond)
}
