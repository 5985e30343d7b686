// internal/scheduling/runner_test.go
package scheduling

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaems12/connection-hub/internal/domain"
)

type recordingHandler struct {
	calls int
	err   error
	last  Task
}

func (h *recordingHandler) HandleTask(_ context.Context, task Task) error {
	h.calls++
	h.last = task
	return h.err
}

func newRunnerEnv(t *testing.T, handler Handler) (*Runner, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewRunner(rdb, handler, log), rdb
}

// scheduleDueTask commits one already-due task through the scheduler.
func scheduleDueTask(t *testing.T, rdb *redis.Client) Task {
	t.Helper()
	task := TryToDisqualifyPlayerTask{
		GameID:        domain.NewGameID(),
		PlayerID:      domain.UserID(domain.NewGameID()),
		PlayerStateID: domain.NewPlayerStateID(),
		OperationID:   domain.NewOperationID(),
		ExecuteAt:     time.Now().Add(-time.Second),
	}
	pipe := rdb.TxPipeline()
	require.NoError(t, NewScheduler(pipe).Schedule(context.Background(), task))
	_, err := pipe.Exec(context.Background())
	require.NoError(t, err)
	return task
}

func TestFireDueExecutesAndCompletes(t *testing.T) {
	ctx := context.Background()
	handler := &recordingHandler{}
	r, rdb := newRunnerEnv(t, handler)
	task := scheduleDueTask(t, rdb)

	require.NoError(t, r.fireDue(ctx))

	assert.Equal(t, 1, handler.calls)
	assert.Equal(t, task, handler.last)
	assert.Zero(t, rdb.ZCard(ctx, scheduleKey).Val())
	assert.Zero(t, rdb.Exists(ctx, payloadKey(task.TaskID())).Val())
}

// A firing that exhausts its retries must leave the schedule entry and
// payload in place so the task refires after its lease expires.
func TestFailedExecutionLeavesTaskForRedelivery(t *testing.T) {
	ctx := context.Background()
	handler := &recordingHandler{err: errors.New("bus unavailable")}
	r, rdb := newRunnerEnv(t, handler)
	task := scheduleDueTask(t, rdb)

	require.NoError(t, r.fireDue(ctx))
	assert.Equal(t, maxExecuteAttempts, handler.calls)

	score, err := rdb.ZScore(ctx, scheduleKey, task.TaskID()).Result()
	require.NoError(t, err)
	assert.Greater(t, score, float64(time.Now().UnixMilli()))
	assert.EqualValues(t, 1, rdb.Exists(ctx, payloadKey(task.TaskID())).Val())

	// Leased into the future, so a second pass must not touch it.
	handler.calls = 0
	require.NoError(t, r.fireDue(ctx))
	assert.Zero(t, handler.calls)
}

func TestClaimAdmitsSingleWinner(t *testing.T) {
	ctx := context.Background()
	r, rdb := newRunnerEnv(t, &recordingHandler{})
	task := scheduleDueTask(t, rdb)
	now := time.Now()

	won, err := r.claim(ctx, task.TaskID(), now)
	require.NoError(t, err)
	assert.True(t, won)

	// The first claim moved the deadline out; a racing claim loses.
	again, err := r.claim(ctx, task.TaskID(), now)
	require.NoError(t, err)
	assert.False(t, again)
}

// An entry whose payload was unscheduled between the range read and the
// claim is dropped rather than leased forever.
func TestFireDueDropsEntryWithoutPayload(t *testing.T) {
	ctx := context.Background()
	handler := &recordingHandler{}
	r, rdb := newRunnerEnv(t, handler)
	task := scheduleDueTask(t, rdb)
	require.NoError(t, rdb.Del(ctx, payloadKey(task.TaskID())).Err())

	require.NoError(t, r.fireDue(ctx))

	assert.Zero(t, handler.calls)
	assert.Zero(t, rdb.ZCard(ctx, scheduleKey).Val())
}
