// internal/executor/executor.go
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gaems12/connection-hub/internal/app"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

// CommandRunner executes one command inside a request transaction.
// *app.Runtime is the production implementation.
type CommandRunner interface {
	Execute(ctx context.Context, operationID domain.OperationID, fn func(context.Context, *app.Request) error) error
}

// Executor dispatches fired deferred tasks to the application layer.
// It satisfies scheduling.Handler.
type Executor struct {
	runtime CommandRunner
	log     *logrus.Logger
}

func New(runtime CommandRunner, log *logrus.Logger) *Executor {
	return &Executor{runtime: runtime, log: log}
}

// HandleTask runs one fired task inside its own request transaction.
// Domain and application errors mean the world moved on since the task
// was armed (the user already left, the game already ended); those are
// logged and absorbed so the runner does not retry them. Anything else
// is transient and returned for retry.
func (e *Executor) HandleTask(ctx context.Context, task scheduling.Task) error {
	var err error
	switch t := task.(type) {
	case scheduling.RemoveFromLobbyTask:
		err = e.runtime.Execute(ctx, e.operationID(t.OperationID, task), func(ctx context.Context, r *app.Request) error {
			return r.RemoveFromLobby(ctx, app.RemoveFromLobbyCommand{
				LobbyID: t.LobbyID,
				UserID:  t.UserID,
			})
		})
	case scheduling.DisconnectFromGameTask:
		err = e.runtime.Execute(ctx, e.operationID(t.OperationID, task), func(ctx context.Context, r *app.Request) error {
			return r.DisconnectFromGame(ctx, app.DisconnectFromGameCommand{
				PlayerID: t.PlayerID,
			})
		})
	case scheduling.TryToDisqualifyPlayerTask:
		err = e.runtime.Execute(ctx, e.operationID(t.OperationID, task), func(ctx context.Context, r *app.Request) error {
			return r.TryToDisqualifyPlayer(ctx, app.TryToDisqualifyPlayerCommand{
				GameID:        t.GameID,
				PlayerID:      t.PlayerID,
				PlayerStateID: t.PlayerStateID,
			})
		})
	default:
		return fmt.Errorf("unknown task type %T", task)
	}

	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrDomain) || errors.Is(err, app.ErrApplication) {
		e.log.WithError(err).WithField("task_id", task.TaskID()).
			Warn("task fired against changed state")
		return nil
	}
	return err
}

// operationID returns the task's correlation id, minting a fresh one
// when the stored payload carried none.
func (e *Executor) operationID(id domain.OperationID, task scheduling.Task) domain.OperationID {
	if !id.IsZero() {
		return id
	}
	minted := domain.NewOperationID()
	e.log.WithFields(logrus.Fields{
		"task_id":      task.TaskID(),
		"operation_id": minted.Hex(),
	}).Warn("task without operation id")
	return minted
}
