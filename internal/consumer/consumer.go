// internal/consumer/consumer.go
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gaems12/connection-hub/internal/app"
	"github.com/gaems12/connection-hub/internal/domain"
	"github.com/gaems12/connection-hub/internal/events"
)

// Gateway and engine subjects the hub consumes.
const (
	SubjectLobbyCreated       = "api_gateway.lobby.created"
	SubjectLobbyUserJoined    = "api_gateway.lobby.user_joined"
	SubjectLobbyUserLeft      = "api_gateway.lobby.user_left"
	SubjectLobbyUserKicked    = "api_gateway.lobby.user_kicked"
	SubjectGameCreated        = "api_gateway.game.created"
	SubjectPlayerDisconnected = "api_gateway.game.player_disconnected"
	SubjectPlayerReconnected  = "api_gateway.game.player_reconnected"
	SubjectPresenceAcked      = "api_gateway.presence.acknowledged"
	SubjectGameEnded          = "connect_four.game.ended"
)

const (
	fetchBatch   = 16
	fetchMaxWait = 5 * time.Second
)

// inbound is the superset of fields gateway and engine messages carry.
type inbound struct {
	UserID       string          `json:"user_id"`
	UserToKickID string          `json:"user_to_kick_id"`
	LobbyID      string          `json:"lobby_id"`
	GameID       string          `json:"game_id"`
	Name         string          `json:"name"`
	Password     string          `json:"password"`
	RuleSet      *ruleSetPayload `json:"rule_set"`
	OperationID  string          `json:"operation_id"`
}

type ruleSetPayload struct {
	Type              string  `json:"type"`
	TimeForEachPlayer float64 `json:"time_for_each_player"`
}

type handlerFunc func(ctx context.Context, r *app.Request, msg inbound) error

// Consumer pulls gateway and engine messages from the stream and runs
// the matching command. One durable consumer per subject, so each
// subject advances independently.
type Consumer struct {
	js      nats.JetStreamContext
	runtime *app.Runtime
	log     *logrus.Logger
}

func New(js nats.JetStreamContext, runtime *app.Runtime, log *logrus.Logger) *Consumer {
	return &Consumer{js: js, runtime: runtime, log: log}
}

// Run subscribes to every inbound subject and blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	routes := map[string]handlerFunc{
		SubjectLobbyCreated:       c.handleCreateLobby,
		SubjectLobbyUserJoined:    c.handleJoinLobby,
		SubjectLobbyUserLeft:      c.handleLeaveLobby,
		SubjectLobbyUserKicked:    c.handleKickFromLobby,
		SubjectGameCreated:        c.handleCreateGame,
		SubjectPlayerDisconnected: c.handleDisconnectFromGame,
		SubjectPlayerReconnected:  c.handleReconnectToGame,
		SubjectPresenceAcked:      c.handleAcknowledgePresence,
		SubjectGameEnded:          c.handleEndGame,
	}

	g, ctx := errgroup.WithContext(ctx)
	for subject, handler := range routes {
		subject, handler := subject, handler
		sub, err := c.js.PullSubscribe(
			subject,
			durableName(subject),
			nats.BindStream(events.StreamName),
			nats.AckExplicit(),
		)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		g.Go(func() error {
			defer sub.Unsubscribe()
			return c.consume(ctx, sub, subject, handler)
		})
	}
	return g.Wait()
}

func (c *Consumer) consume(ctx context.Context, sub *nats.Subscription, subject string, handler handlerFunc) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msgs, err := sub.Fetch(fetchBatch, nats.MaxWait(fetchMaxWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			c.log.WithError(err).WithField("subject", subject).Error("fetch failed")
			continue
		}
		for _, msg := range msgs {
			c.dispatch(ctx, subject, handler, msg)
		}
	}
}

// dispatch runs one message through its command. Malformed payloads are
// terminated, domain and application rejections are acked (redelivery
// cannot fix them), everything else is naked for redelivery.
func (c *Consumer) dispatch(ctx context.Context, subject string, handler handlerFunc, msg *nats.Msg) {
	var body inbound
	if err := json.Unmarshal(msg.Data, &body); err != nil {
		c.log.WithError(err).WithField("subject", subject).Error("dropping malformed message")
		_ = msg.Term()
		return
	}

	opID := domain.NewOperationID()
	if body.OperationID != "" {
		parsed, err := domain.ParseOperationID(body.OperationID)
		if err != nil {
			c.log.WithError(err).WithField("subject", subject).
				Warn("malformed operation id, minting a fresh one")
		} else {
			opID = parsed
		}
	} else {
		c.log.WithField("subject", subject).Warn("message without operation id")
	}

	err := c.runtime.Execute(ctx, opID, func(ctx context.Context, r *app.Request) error {
		return handler(ctx, r, body)
	})
	switch {
	case err == nil:
		_ = msg.Ack()
	case errors.Is(err, domain.ErrDomain), errors.Is(err, app.ErrApplication):
		c.log.WithError(err).WithFields(logrus.Fields{
			"subject":      subject,
			"operation_id": opID.Hex(),
		}).Warn("command rejected")
		_ = msg.Ack()
	default:
		c.log.WithError(err).WithFields(logrus.Fields{
			"subject":      subject,
			"operation_id": opID.Hex(),
		}).Error("command failed")
		_ = msg.Nak()
	}
}

func (c *Consumer) handleCreateLobby(ctx context.Context, r *app.Request, msg inbound) error {
	userID, err := parseUserID(msg.UserID)
	if err != nil {
		return err
	}
	ruleSet, err := parseRuleSet(msg.RuleSet)
	if err != nil {
		return err
	}
	_, err = r.CreateLobby(ctx, app.CreateLobbyCommand{
		UserID:   userID,
		Name:     msg.Name,
		RuleSet:  ruleSet,
		Password: msg.Password,
	})
	return err
}

func (c *Consumer) handleJoinLobby(ctx context.Context, r *app.Request, msg inbound) error {
	userID, err := parseUserID(msg.UserID)
	if err != nil {
		return err
	}
	lobbyID, err := domain.ParseLobbyID(msg.LobbyID)
	if err != nil {
		return fmt.Errorf("%w: %v", app.ErrLobbyDoesNotExist, err)
	}
	return r.JoinLobby(ctx, app.JoinLobbyCommand{
		UserID:   userID,
		LobbyID:  lobbyID,
		Password: msg.Password,
	})
}

func (c *Consumer) handleLeaveLobby(ctx context.Context, r *app.Request, msg inbound) error {
	userID, err := parseUserID(msg.UserID)
	if err != nil {
		return err
	}
	return r.LeaveLobby(ctx, app.LeaveLobbyCommand{UserID: userID})
}

func (c *Consumer) handleKickFromLobby(ctx context.Context, r *app.Request, msg inbound) error {
	userID, err := parseUserID(msg.UserID)
	if err != nil {
		return err
	}
	targetID, err := parseUserID(msg.UserToKickID)
	if err != nil {
		return err
	}
	return r.KickFromLobby(ctx, app.KickFromLobbyCommand{
		UserID:       userID,
		UserToKickID: targetID,
	})
}

func (c *Consumer) handleCreateGame(ctx context.Context, r *app.Request, msg inbound) error {
	userID, err := parseUserID(msg.UserID)
	if err != nil {
		return err
	}
	lobbyID, err := domain.ParseLobbyID(msg.LobbyID)
	if err != nil {
		return fmt.Errorf("%w: %v", app.ErrLobbyDoesNotExist, err)
	}
	_, err = r.CreateGame(ctx, app.CreateGameCommand{
		UserID:  userID,
		LobbyID: lobbyID,
	})
	return err
}

func (c *Consumer) handleDisconnectFromGame(ctx context.Context, r *app.Request, msg inbound) error {
	playerID, err := parseUserID(msg.UserID)
	if err != nil {
		return err
	}
	return r.DisconnectFromGame(ctx, app.DisconnectFromGameCommand{PlayerID: playerID})
}

func (c *Consumer) handleReconnectToGame(ctx context.Context, r *app.Request, msg inbound) error {
	playerID, err := parseUserID(msg.UserID)
	if err != nil {
		return err
	}
	return r.ReconnectToGame(ctx, app.ReconnectToGameCommand{PlayerID: playerID})
}

func (c *Consumer) handleAcknowledgePresence(ctx context.Context, r *app.Request, msg inbound) error {
	userID, err := parseUserID(msg.UserID)
	if err != nil {
		return err
	}
	return r.AcknowledgePresence(ctx, app.AcknowledgePresenceCommand{UserID: userID})
}

func (c *Consumer) handleEndGame(ctx context.Context, r *app.Request, msg inbound) error {
	gameID, err := domain.ParseGameID(msg.GameID)
	if err != nil {
		return fmt.Errorf("%w: %v", app.ErrGameDoesNotExist, err)
	}
	return r.EndGame(ctx, app.EndGameCommand{GameID: gameID})
}

func parseUserID(s string) (domain.UserID, error) {
	if s == "" {
		return domain.UserID{}, app.ErrMissingUserID
	}
	id, err := domain.ParseUserID(s)
	if err != nil {
		return domain.UserID{}, fmt.Errorf("%w: %v", app.ErrMissingUserID, err)
	}
	return id, nil
}

func parseRuleSet(p *ruleSetPayload) (domain.RuleSet, error) {
	if p == nil {
		return nil, app.ErrInvalidLobbyRuleSet
	}
	switch p.Type {
	case string(domain.RuleSetConnectFour):
		return domain.ConnectFourRuleSet{
			TimeForEachPlayer: time.Duration(p.TimeForEachPlayer * float64(time.Second)),
		}, nil
	default:
		return nil, app.ErrInvalidLobbyRuleSet
	}
}

// durableName derives a durable consumer name from a subject.
func durableName(subject string) string {
	return "connection_hub_" + strings.ReplaceAll(subject, ".", "_")
}
