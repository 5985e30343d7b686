// internal/events/publisher.go
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// StreamName is the JetStream stream carrying every game-platform
// subject: hub egress, gateway ingress and the engines' game.ended.
const StreamName = "games"

// Publisher writes integration events to JetStream.
type Publisher struct {
	js  nats.JetStreamContext
	log *logrus.Logger
}

func NewPublisher(js nats.JetStreamContext, log *logrus.Logger) *Publisher {
	return &Publisher{js: js, log: log}
}

// Publish marshals the event and publishes it on its subject.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %T: %w", event, err)
	}
	_, err = p.js.Publish(event.Subject(), payload, nats.Context(ctx), nats.ExpectStream(StreamName))
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Subject(), err)
	}
	p.log.WithField("subject", event.Subject()).Debug("event published")
	return nil
}

// EnsureStream creates the stream if it does not already exist.
func EnsureStream(js nats.JetStreamContext) error {
	_, err := js.StreamInfo(StreamName)
	if err == nil {
		return nil
	}
	if err != nats.ErrStreamNotFound {
		return fmt.Errorf("stream info: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name: StreamName,
		Subjects: []string{
			"connection_hub.lobby.created",
			"connection_hub.lobby.user_joined",
			"connection_hub.lobby.user_left",
			"connection_hub.lobby.user_removed",
			"connection_hub.lobby.user_kicked",
			"connection_hub.connect_four.game.created",
			"connection_hub.connect_four.game.player_disconnected",
			"connection_hub.connect_four.game.player_reconnected",
			"connection_hub.connect_four.game.player_disqualified",
			"api_gateway.lobby.created",
			"api_gateway.lobby.user_joined",
			"api_gateway.lobby.user_left",
			"api_gateway.lobby.user_kicked",
			"api_gateway.game.created",
			"api_gateway.game.player_disconnected",
			"api_gateway.game.player_reconnected",
			"api_gateway.presence.acknowledged",
			"*.game.ended",
		},
	})
	if err != nil {
		return fmt.Errorf("add stream %s: %w", StreamName, err)
	}
	return nil
}
