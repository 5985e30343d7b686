// internal/app/acknowledge_presence_test.go
package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaems12/connection-hub/internal/scheduling"
)

func TestAcknowledgePresenceInLobby(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	lobby, _, member := seedLobby(t, e)

	require.NoError(t, e.request.AcknowledgePresence(ctx, AcknowledgePresenceCommand{UserID: member}))

	task, ok := e.tasks.pending[scheduling.RemoveFromLobbyTaskID(lobby.ID, member)].(scheduling.RemoveFromLobbyTask)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(PresenceGraceWindow), task.ExecuteAt, time.Second)
}

func TestAcknowledgePresenceInGame(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	game, first, _ := seedGame(t, e)

	require.NoError(t, e.request.AcknowledgePresence(ctx, AcknowledgePresenceCommand{UserID: first}))

	task, ok := e.tasks.pending[scheduling.DisconnectFromGameTaskID(game.ID, first)].(scheduling.DisconnectFromGameTask)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(PresenceGraceWindow), task.ExecuteAt, time.Second)
}

// Repeated heartbeats replace the pending deadline instead of stacking
// duplicate tasks.
func TestAcknowledgePresenceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	_, _, member := seedLobby(t, e)

	require.NoError(t, e.request.AcknowledgePresence(ctx, AcknowledgePresenceCommand{UserID: member}))
	require.NoError(t, e.request.AcknowledgePresence(ctx, AcknowledgePresenceCommand{UserID: member}))

	assert.Len(t, e.tasks.pending, 1)
}

func TestAcknowledgePresenceIdleUserIsNoOp(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	require.NoError(t, e.request.AcknowledgePresence(ctx, AcknowledgePresenceCommand{UserID: newUserID()}))

	assert.Empty(t, e.tasks.pending)
	assert.Empty(t, e.bus.published)
	assert.Empty(t, e.realtime.commands)
}
