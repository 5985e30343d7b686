// internal/database/game_mapper.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gaems12/connection-hub/internal/domain"
)

// GameMapper translates game aggregates to and from their Redis
// records. Same split as LobbyMapper: direct reads, pipelined writes.
type GameMapper struct {
	rdb   redis.Cmdable
	pipe  redis.Pipeliner
	locks *LockManager
	ttl   time.Duration
}

func NewGameMapper(rdb redis.Cmdable, pipe redis.Pipeliner, locks *LockManager, ttl time.Duration) *GameMapper {
	return &GameMapper{rdb: rdb, pipe: pipe, locks: locks, ttl: ttl}
}

// ByID returns the game or nil. With acquire the game's advisory lock
// is taken before reading.
func (m *GameMapper) ByID(ctx context.Context, id domain.GameID, acquire bool) (*domain.Game, error) {
	if acquire {
		if err := m.locks.Acquire(ctx, gameLockID(id)); err != nil {
			return nil, err
		}
	}
	return m.findOne(ctx, gameByIDPattern(id))
}

// ByPlayerID returns the game containing the player, found by keyspace
// scan, or nil.
func (m *GameMapper) ByPlayerID(ctx context.Context, playerID domain.UserID, acquire bool) (*domain.Game, error) {
	game, err := m.findOne(ctx, gameByPlayerIDPattern(playerID))
	if err != nil || game == nil {
		return game, err
	}
	if acquire {
		if err := m.locks.Acquire(ctx, gameLockID(game.ID)); err != nil {
			return nil, err
		}
		return m.findOne(ctx, gameByIDPattern(game.ID))
	}
	return game, nil
}

// Save writes a new game with the configured TTL.
func (m *GameMapper) Save(ctx context.Context, game *domain.Game) error {
	raw, err := encodeGame(game)
	if err != nil {
		return err
	}
	m.pipe.Set(ctx, gameKey(game.ID, game.PlayerIDs()), raw, m.ttl)
	return nil
}

// Update rewrites the game, dropping any key with a stale roster.
func (m *GameMapper) Update(ctx context.Context, game *domain.Game) error {
	if err := m.Delete(ctx, game); err != nil {
		return err
	}
	raw, err := encodeGame(game)
	if err != nil {
		return err
	}
	m.pipe.Set(ctx, gameKey(game.ID, game.PlayerIDs()), raw, m.ttl)
	return nil
}

// Delete removes every key carrying the game's id.
func (m *GameMapper) Delete(ctx context.Context, game *domain.Game) error {
	keys, err := scanKeys(ctx, m.rdb, gameByIDPattern(game.ID))
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		m.pipe.Del(ctx, keys...)
	}
	return nil
}

func (m *GameMapper) findOne(ctx context.Context, pattern string) (*domain.Game, error) {
	keys, err := scanKeys(ctx, m.rdb, pattern)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	raw, err := m.rdb.Get(ctx, keys[0]).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", keys[0], err)
	}
	return decodeGame([]byte(raw))
}

type playerRecord struct {
	ID       string  `json:"id"`
	StateID  string  `json:"state_id"`
	Status   string  `json:"status"`
	TimeLeft float64 `json:"time_left"`
}

type gameRecord struct {
	Type              string         `json:"type"`
	ID                string         `json:"id"`
	Players           []playerRecord `json:"players"`
	CreatedAt         time.Time      `json:"created_at"`
	TimeForEachPlayer float64        `json:"time_for_each_player"`
}

func encodeGame(game *domain.Game) ([]byte, error) {
	rec := gameRecord{
		Type:      string(game.RuleSet.Type()),
		ID:        game.ID.Hex(),
		CreatedAt: game.CreatedAt,
	}
	for _, p := range game.Players {
		rec.Players = append(rec.Players, playerRecord{
			ID:       p.ID.Hex(),
			StateID:  p.State.ID.Hex(),
			Status:   string(p.State.Status),
			TimeLeft: p.State.TimeLeft.Seconds(),
		})
	}
	switch rs := game.RuleSet.(type) {
	case domain.ConnectFourRuleSet:
		rec.TimeForEachPlayer = rs.TimeForEachPlayer.Seconds()
	default:
		return nil, fmt.Errorf("encode game %s: unknown rule set %T", game.ID.Hex(), game.RuleSet)
	}
	return json.Marshal(rec)
}

func decodeGame(raw []byte) (*domain.Game, error) {
	var rec gameRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}

	var ruleSet domain.RuleSet
	switch domain.RuleSetType(rec.Type) {
	case domain.RuleSetConnectFour:
		ruleSet = domain.ConnectFourRuleSet{
			TimeForEachPlayer: secondsToDuration(rec.TimeForEachPlayer),
		}
	default:
		return nil, fmt.Errorf("decode game: unknown type %q", rec.Type)
	}

	id, err := domain.ParseGameID(rec.ID)
	if err != nil {
		return nil, err
	}
	game := &domain.Game{
		ID:        id,
		RuleSet:   ruleSet,
		CreatedAt: rec.CreatedAt,
	}
	for _, p := range rec.Players {
		userID, err := domain.ParseUserID(p.ID)
		if err != nil {
			return nil, err
		}
		stateID, err := domain.ParsePlayerStateID(p.StateID)
		if err != nil {
			return nil, err
		}
		game.Players = append(game.Players, domain.Player{
			ID: userID,
			State: domain.PlayerState{
				ID:       stateID,
				Status:   domain.PlayerStatus(p.Status),
				TimeLeft: secondsToDuration(p.TimeLeft),
			},
		})
	}
	return game, nil
}
