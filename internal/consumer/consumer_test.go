// internal/consumer/consumer_test.go
package consumer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaems12/connection-hub/internal/app"
	"github.com/gaems12/connection-hub/internal/domain"
)

func TestDurableNameHasNoDots(t *testing.T) {
	assert.Equal(t, "connection_hub_api_gateway_lobby_created", durableName(SubjectLobbyCreated))
	assert.Equal(t, "connection_hub_connect_four_game_ended", durableName(SubjectGameEnded))
	assert.NotContains(t, durableName(SubjectPresenceAcked), ".")
}

func TestParseRuleSet(t *testing.T) {
	rs, err := parseRuleSet(&ruleSetPayload{Type: "connect_four", TimeForEachPlayer: 90})
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectFourRuleSet{TimeForEachPlayer: 90 * time.Second}, rs)

	_, err = parseRuleSet(nil)
	assert.ErrorIs(t, err, app.ErrInvalidLobbyRuleSet)

	_, err = parseRuleSet(&ruleSetPayload{Type: "chess"})
	assert.ErrorIs(t, err, app.ErrInvalidLobbyRuleSet)
}

func TestParseUserID(t *testing.T) {
	id, err := parseUserID("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", id.Hex())

	_, err = parseUserID("")
	assert.ErrorIs(t, err, app.ErrMissingUserID)

	_, err = parseUserID("not-an-id")
	assert.ErrorIs(t, err, app.ErrMissingUserID)
}
