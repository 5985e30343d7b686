// internal/app/fakes_test.go
package app

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

// Single-slot stores: every scenario touches at most one lobby and one
// game, which keeps the fakes trivial.

type fakeLobbyStore struct {
	lobby   *domain.Lobby
	saves   int
	updates int
	deletes int
}

func (s *fakeLobbyStore) ByID(_ context.Context, id domain.LobbyID, _ bool) (*domain.Lobby, error) {
	if s.lobby != nil && s.lobby.ID == id {
		return s.lobby, nil
	}
	return nil, nil
}

func (s *fakeLobbyStore) ByUserID(_ context.Context, userID domain.UserID, _ bool) (*domain.Lobby, error) {
	if s.lobby != nil && s.lobby.Contains(userID) {
		return s.lobby, nil
	}
	return nil, nil
}

func (s *fakeLobbyStore) Save(_ context.Context, lobby *domain.Lobby) error {
	s.lobby = lobby
	s.saves++
	return nil
}

func (s *fakeLobbyStore) Update(_ context.Context, lobby *domain.Lobby) error {
	s.lobby = lobby
	s.updates++
	return nil
}

func (s *fakeLobbyStore) Delete(_ context.Context, _ *domain.Lobby) error {
	s.lobby = nil
	s.deletes++
	return nil
}

type fakeGameStore struct {
	game    *domain.Game
	saves   int
	updates int
	deletes int
}

func (s *fakeGameStore) ByID(_ context.Context, id domain.GameID, _ bool) (*domain.Game, error) {
	if s.game != nil && s.game.ID == id {
		return s.game, nil
	}
	return nil, nil
}

func (s *fakeGameStore) ByPlayerID(_ context.Context, playerID domain.UserID, _ bool) (*domain.Game, error) {
	if s.game != nil && s.game.Contains(playerID) {
		return s.game, nil
	}
	return nil, nil
}

func (s *fakeGameStore) Save(_ context.Context, game *domain.Game) error {
	s.game = game
	s.saves++
	return nil
}

func (s *fakeGameStore) Update(_ context.Context, game *domain.Game) error {
	s.game = game
	s.updates++
	return nil
}

func (s *fakeGameStore) Delete(_ context.Context, _ *domain.Game) error {
	s.game = nil
	s.deletes++
	return nil
}

// fakeScheduler keeps the pending set keyed by task id, mirroring the
// replace-on-reschedule behavior of the real schedule.
type fakeScheduler struct {
	pending     map[string]scheduling.Task
	unscheduled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: make(map[string]scheduling.Task)}
}

func (s *fakeScheduler) Schedule(_ context.Context, task scheduling.Task) error {
	s.pending[task.TaskID()] = task
	return nil
}

func (s *fakeScheduler) ScheduleMany(ctx context.Context, tasks []scheduling.Task) error {
	for _, task := range tasks {
		if err := s.Schedule(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeScheduler) Unschedule(_ context.Context, taskID string) error {
	delete(s.pending, taskID)
	s.unscheduled = append(s.unscheduled, taskID)
	return nil
}

func (s *fakeScheduler) UnscheduleMany(ctx context.Context, taskIDs []string) error {
	for _, id := range taskIDs {
		if err := s.Unschedule(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

type fakeEventBus struct {
	published []events.Event
}

func (b *fakeEventBus) Publish(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *fakeEventBus) last() events.Event {
	if len(b.published) == 0 {
		return nil
	}
	return b.published[len(b.published)-1]
}

type fakeRealtime struct {
	commands []centrifugo.Command
}

func (f *fakeRealtime) Publish(_ context.Context, channel string, data any) error {
	f.commands = append(f.commands, centrifugo.NewPublish(channel, data))
	return nil
}

func (f *fakeRealtime) Batch(_ context.Context, commands []centrifugo.Command, _ bool) error {
	f.commands = append(f.commands, commands...)
	return nil
}

func (f *fakeRealtime) publishedOn(channel string) []centrifugo.Command {
	var out []centrifugo.Command
	for _, c := range f.commands {
		if c.Publish != nil && c.Publish.Channel == channel {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRealtime) unsubscribedFrom(channel string) []centrifugo.Command {
	var out []centrifugo.Command
	for _, c := range f.commands {
		if c.Unsubscribe != nil && c.Unsubscribe.Channel == channel {
			out = append(out, c)
		}
	}
	return out
}

type fakeTx struct {
	commits int
	aborts  int
}

func (t *fakeTx) Commit(context.Context) error { t.commits++; return nil }
func (t *fakeTx) Abort(context.Context) error  { t.aborts++; return nil }

// env wires a request to in-memory fakes.
type env struct {
	lobbies  *fakeLobbyStore
	games    *fakeGameStore
	tasks    *fakeScheduler
	bus      *fakeEventBus
	realtime *fakeRealtime
	opID     domain.OperationID
	request  *Request
}

func newTestEnv(t *testing.T) *env {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	e := &env{
		lobbies:  &fakeLobbyStore{},
		games:    &fakeGameStore{},
		tasks:    newFakeScheduler(),
		bus:      &fakeEventBus{},
		realtime: &fakeRealtime{},
		opID:     domain.NewOperationID(),
	}
	e.request = NewTestRequest(e.lobbies, e.games, e.tasks, e.bus, e.realtime, &fakeTx{}, e.opID, log)
	return e
}
