// internal/app/ports.go
package app

import (
	"context"

	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

// LobbyStore loads and persists lobby aggregates. Loads return
// (nil, nil) for a missing lobby; acquire takes the entity lock for
// the rest of the request.
type LobbyStore interface {
	ByID(ctx context.Context, id domain.LobbyID, acquire bool) (*domain.Lobby, error)
	ByUserID(ctx context.Context, userID domain.UserID, acquire bool) (*domain.Lobby, error)
	Save(ctx context.Context, lobby *domain.Lobby) error
	Update(ctx context.Context, lobby *domain.Lobby) error
	Delete(ctx context.Context, lobby *domain.Lobby) error
}

// GameStore is the game counterpart of LobbyStore.
type GameStore interface {
	ByID(ctx context.Context, id domain.GameID, acquire bool) (*domain.Game, error)
	ByPlayerID(ctx context.Context, playerID domain.UserID, acquire bool) (*domain.Game, error)
	Save(ctx context.Context, game *domain.Game) error
	Update(ctx context.Context, game *domain.Game) error
	Delete(ctx context.Context, game *domain.Game) error
}

// TaskScheduler persists deferred tasks within the request transaction.
type TaskScheduler interface {
	Schedule(ctx context.Context, task scheduling.Task) error
	ScheduleMany(ctx context.Context, tasks []scheduling.Task) error
	Unschedule(ctx context.Context, taskID string) error
	UnscheduleMany(ctx context.Context, taskIDs []string) error
}

// EventPublisher publishes integration events to the durable bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// RealtimeClient is the fan-out service the gateway's subscribers
// listen to.
type RealtimeClient interface {
	Publish(ctx context.Context, channel string, data any) error
	Batch(ctx context.Context, commands []centrifugo.Command, parallel bool) error
}

// Tx is the request transaction: Commit flushes the KV pipeline and
// releases locks, Abort discards and releases.
type Tx interface {
	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
}
