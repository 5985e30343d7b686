// internal/app/request.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/database"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

// PresenceGraceWindow is the time from the last heartbeat to automatic
// lobby removal or game disconnect.
const PresenceGraceWindow = 15 * time.Second

// Runtime holds the long-lived collaborators and stamps out
// request-scoped bundles. One Runtime serves the whole process.
type Runtime struct {
	rdb      *redis.Client
	events   EventPublisher
	realtime RealtimeClient
	log      *logrus.Logger
	lockTTL  time.Duration
	lobbyTTL time.Duration
	gameTTL  time.Duration
}

func NewRuntime(
	rdb *redis.Client,
	eventPublisher EventPublisher,
	realtime RealtimeClient,
	log *logrus.Logger,
	lockTTL, lobbyTTL, gameTTL time.Duration,
) *Runtime {
	return &Runtime{
		rdb:      rdb,
		events:   eventPublisher,
		realtime: realtime,
		log:      log,
		lockTTL:  lockTTL,
		lobbyTTL: lobbyTTL,
		gameTTL:  gameTTL,
	}
}

// NewRequest builds the per-request bundle: a fresh pipeline, lock set,
// mappers and scheduler, all sharing that pipeline so every write lands
// in one atomic commit.
func (rt *Runtime) NewRequest(operationID domain.OperationID) *Request {
	pipe := rt.rdb.TxPipeline()
	locks := database.NewLockManager(rt.rdb, rt.lockTTL)
	return &Request{
		Lobbies:  database.NewLobbyMapper(rt.rdb, pipe, locks, rt.lobbyTTL),
		Games:    database.NewGameMapper(rt.rdb, pipe, locks, rt.gameTTL),
		Tasks:    scheduling.NewScheduler(pipe),
		events:   rt.events,
		realtime: rt.realtime,
		tx:       &redisTx{pipe: pipe, locks: locks},
		opID:     operationID,
		Log:      rt.log.WithField("operation_id", operationID.Hex()),
	}
}

// Execute runs one command function inside a request: on success the
// transaction commits and the accumulated fan-out is flushed, on error
// everything is discarded and locks released.
func (rt *Runtime) Execute(ctx context.Context, operationID domain.OperationID, fn func(ctx context.Context, r *Request) error) error {
	r := rt.NewRequest(operationID)
	if err := fn(ctx, r); err != nil {
		if abortErr := r.tx.Abort(ctx); abortErr != nil {
			r.Log.WithError(abortErr).Error("abort failed")
		}
		return err
	}
	return r.commit(ctx)
}

// NewTestRequest assembles a request from explicit collaborators. Used
// by tests to substitute in-memory fakes.
func NewTestRequest(
	lobbies LobbyStore,
	games GameStore,
	tasks TaskScheduler,
	eventPublisher EventPublisher,
	realtime RealtimeClient,
	tx Tx,
	operationID domain.OperationID,
	log *logrus.Logger,
) *Request {
	return &Request{
		Lobbies:  lobbies,
		Games:    games,
		Tasks:    tasks,
		events:   eventPublisher,
		realtime: realtime,
		tx:       tx,
		opID:     operationID,
		Log:      log.WithField("operation_id", operationID.Hex()),
	}
}

// Request carries everything one command touches. Events and realtime
// commands accumulate during processing and are published only after
// the KV commit succeeds, so externally visible effects never refer to
// state that failed to persist.
type Request struct {
	Lobbies LobbyStore
	Games   GameStore
	Tasks   TaskScheduler
	Log     *logrus.Entry

	events   EventPublisher
	realtime RealtimeClient
	tx       Tx
	opID     domain.OperationID

	pendingEvents   []events.Event
	pendingRealtime []centrifugo.Command
}

// OperationID is the correlation id for this request.
func (r *Request) OperationID() domain.OperationID { return r.opID }

func (r *Request) publishEvent(ev events.Event) {
	r.pendingEvents = append(r.pendingEvents, ev)
}

func (r *Request) publishRealtime(cmds ...centrifugo.Command) {
	r.pendingRealtime = append(r.pendingRealtime, cmds...)
}

// Commit commits the request transaction and flushes pending fan-out.
// Exposed for tests; production paths go through Runtime.Execute.
func (r *Request) Commit(ctx context.Context) error { return r.commit(ctx) }

func (r *Request) commit(ctx context.Context) error {
	if err := r.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	for _, ev := range r.pendingEvents {
		if err := r.events.Publish(ctx, ev); err != nil {
			// State is already committed; surface the error so the
			// ingress redelivers, and let precondition checks absorb
			// the replay.
			return fmt.Errorf("publish event after commit: %w", err)
		}
	}
	r.pendingEvents = nil

	if len(r.pendingRealtime) > 0 {
		if err := r.realtime.Batch(ctx, r.pendingRealtime, true); err != nil {
			return fmt.Errorf("publish realtime after commit: %w", err)
		}
		r.pendingRealtime = nil
	}
	return nil
}

// redisTx flushes the request pipeline and releases advisory locks.
type redisTx struct {
	pipe  redis.Pipeliner
	locks *database.LockManager
}

func (t *redisTx) Commit(ctx context.Context) error {
	if _, err := t.pipe.Exec(ctx); err != nil && err != redis.Nil {
		return err
	}
	return t.locks.ReleaseAll(ctx)
}

func (t *redisTx) Abort(ctx context.Context) error {
	t.pipe.Discard()
	return t.locks.ReleaseAll(ctx)
}
