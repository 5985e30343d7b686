// internal/domain/lobby_test.go
package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLobby(t *testing.T, password string) (*Lobby, UserID) {
	t.Helper()
	creator := newUserID()
	hash := ""
	if password != "" {
		var err error
		hash, err = HashLobbyPassword(password)
		require.NoError(t, err)
	}
	lobby := NewLobby("friday night", creator, ConnectFourRuleSet{TimeForEachPlayer: time.Minute}, hash)
	return lobby, creator
}

func newUserID() UserID {
	return UserID(mustV7())
}

func TestNewLobbyCreatorIsAdmin(t *testing.T) {
	lobby, creator := newTestLobby(t, "")

	role, ok := lobby.RoleOf(creator)
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, role)
	assert.Empty(t, lobby.AdminQueue)

	admin, ok := lobby.Admin()
	require.True(t, ok)
	assert.Equal(t, creator, admin)
}

func TestJoinAddsRegularMemberToQueue(t *testing.T) {
	lobby, _ := newTestLobby(t, "")
	joiner := newUserID()

	require.NoError(t, lobby.Join(joiner, ""))

	role, ok := lobby.RoleOf(joiner)
	require.True(t, ok)
	assert.Equal(t, RoleRegularMember, role)
	assert.Equal(t, []UserID{joiner}, lobby.AdminQueue)
}

func TestJoinRejectsDuplicate(t *testing.T) {
	lobby, creator := newTestLobby(t, "")

	err := lobby.Join(creator, "")
	assert.ErrorIs(t, err, ErrUserAlreadyInLobby)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestJoinRejectsWhenFull(t *testing.T) {
	lobby, _ := newTestLobby(t, "")
	require.NoError(t, lobby.Join(newUserID(), ""))

	err := lobby.Join(newUserID(), "")
	assert.ErrorIs(t, err, ErrUserLimitReached)
}

func TestJoinPasswordChecks(t *testing.T) {
	lobby, _ := newTestLobby(t, "hunter2")
	joiner := newUserID()

	assert.ErrorIs(t, lobby.Join(joiner, ""), ErrPasswordRequired)
	assert.ErrorIs(t, lobby.Join(joiner, "wrong"), ErrIncorrectPassword)
	assert.NoError(t, lobby.Join(joiner, "hunter2"))
}

func TestRemoveRegularMemberKeepsAdmin(t *testing.T) {
	lobby, creator := newTestLobby(t, "")
	joiner := newUserID()
	require.NoError(t, lobby.Join(joiner, ""))

	empty, newAdmin, err := lobby.Remove(joiner)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.True(t, newAdmin.IsZero())
	assert.Empty(t, lobby.AdminQueue)

	admin, ok := lobby.Admin()
	require.True(t, ok)
	assert.Equal(t, creator, admin)
}

func TestRemoveAdminPromotesQueueHead(t *testing.T) {
	lobby, creator := newTestLobby(t, "")
	joiner := newUserID()
	require.NoError(t, lobby.Join(joiner, ""))

	empty, newAdmin, err := lobby.Remove(creator)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, joiner, newAdmin)
	assert.Empty(t, lobby.AdminQueue)

	role, ok := lobby.RoleOf(joiner)
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, role)
}

func TestRemoveLastUserEmptiesLobby(t *testing.T) {
	lobby, creator := newTestLobby(t, "")

	empty, newAdmin, err := lobby.Remove(creator)
	require.NoError(t, err)
	assert.True(t, empty)
	assert.True(t, newAdmin.IsZero())
}

func TestRemoveAdminWithCorruptQueue(t *testing.T) {
	lobby, creator := newTestLobby(t, "")
	require.NoError(t, lobby.Join(newUserID(), ""))
	lobby.AdminQueue = nil

	_, _, err := lobby.Remove(creator)
	assert.ErrorIs(t, err, ErrNoAdminSuccessor)
}

func TestRemoveUnknownUser(t *testing.T) {
	lobby, _ := newTestLobby(t, "")

	_, _, err := lobby.Remove(newUserID())
	assert.ErrorIs(t, err, ErrUserNotInLobby)
}

func TestKickRules(t *testing.T) {
	lobby, creator := newTestLobby(t, "")
	joiner := newUserID()
	require.NoError(t, lobby.Join(joiner, ""))

	assert.ErrorIs(t, lobby.Kick(creator, joiner), ErrUserIsNotAdmin)
	assert.ErrorIs(t, lobby.Kick(creator, creator), ErrUserIsTryingKickHimself)
	assert.ErrorIs(t, lobby.Kick(newUserID(), creator), ErrUserNotInLobby)

	require.NoError(t, lobby.Kick(joiner, creator))
	assert.False(t, lobby.Contains(joiner))
	assert.Empty(t, lobby.AdminQueue)
}
