// internal/database/lobby_mapper.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gaems12/connection-hub/internal/domain"
)

// LobbyMapper translates lobby aggregates to and from their Redis
// records. Reads go straight to Redis; writes accumulate in the
// request pipeline and become visible at commit.
type LobbyMapper struct {
	rdb   redis.Cmdable
	pipe  redis.Pipeliner
	locks *LockManager
	ttl   time.Duration
}

func NewLobbyMapper(rdb redis.Cmdable, pipe redis.Pipeliner, locks *LockManager, ttl time.Duration) *LobbyMapper {
	return &LobbyMapper{rdb: rdb, pipe: pipe, locks: locks, ttl: ttl}
}

// ByID returns the lobby or nil when it does not exist. With acquire
// the lobby's advisory lock is taken before reading.
func (m *LobbyMapper) ByID(ctx context.Context, id domain.LobbyID, acquire bool) (*domain.Lobby, error) {
	if acquire {
		if err := m.locks.Acquire(ctx, lobbyLockID(id)); err != nil {
			return nil, err
		}
	}
	return m.findOne(ctx, lobbyByIDPattern(id))
}

// ByUserID returns the lobby containing the user, found by keyspace
// scan, or nil.
func (m *LobbyMapper) ByUserID(ctx context.Context, userID domain.UserID, acquire bool) (*domain.Lobby, error) {
	lobby, err := m.findOne(ctx, lobbyByUserIDPattern(userID))
	if err != nil || lobby == nil {
		return lobby, err
	}
	if acquire {
		if err := m.locks.Acquire(ctx, lobbyLockID(lobby.ID)); err != nil {
			return nil, err
		}
		// Reload under the lock: the first read raced other writers.
		return m.findOne(ctx, lobbyByIDPattern(lobby.ID))
	}
	return lobby, nil
}

// Save writes a new lobby with the configured TTL.
func (m *LobbyMapper) Save(ctx context.Context, lobby *domain.Lobby) error {
	raw, err := encodeLobby(lobby)
	if err != nil {
		return err
	}
	m.pipe.Set(ctx, lobbyKey(lobby.ID, lobby.UserIDs()), raw, m.ttl)
	return nil
}

// Update rewrites the lobby. The member set is part of the key, so the
// old key is deleted and the new one written in the same pipeline.
func (m *LobbyMapper) Update(ctx context.Context, lobby *domain.Lobby) error {
	if err := m.Delete(ctx, lobby); err != nil {
		return err
	}
	raw, err := encodeLobby(lobby)
	if err != nil {
		return err
	}
	m.pipe.Set(ctx, lobbyKey(lobby.ID, lobby.UserIDs()), raw, m.ttl)
	return nil
}

// Delete removes every key carrying the lobby's id.
func (m *LobbyMapper) Delete(ctx context.Context, lobby *domain.Lobby) error {
	keys, err := scanKeys(ctx, m.rdb, lobbyByIDPattern(lobby.ID))
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		m.pipe.Del(ctx, keys...)
	}
	return nil
}

func (m *LobbyMapper) findOne(ctx context.Context, pattern string) (*domain.Lobby, error) {
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
	return decodeLobby([]byte(raw))
}

type lobbyUserRecord struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type lobbyRecord struct {
	Type              string            `json:"type"`
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Users             []lobbyUserRecord `json:"users"`
	AdminQueue        []string          `json:"admin_role_transfer_queue"`
	PasswordHash      string            `json:"password_hash,omitempty"`
	TimeForEachPlayer float64           `json:"time_for_each_player"`
}

func encodeLobby(lobby *domain.Lobby) ([]byte, error) {
	rec := lobbyRecord{
		Type:         string(lobby.RuleSet.Type()),
		ID:           lobby.ID.Hex(),
		Name:         lobby.Name,
		PasswordHash: lobby.PasswordHash,
	}
	for _, u := range lobby.Users {
		rec.Users = append(rec.Users, lobbyUserRecord{ID: u.ID.Hex(), Role: string(u.Role)})
	}
	for _, id := range lobby.AdminQueue {
		rec.AdminQueue = append(rec.AdminQueue, id.Hex())
	}
	switch rs := lobby.RuleSet.(type) {
	case domain.ConnectFourRuleSet:
		rec.TimeForEachPlayer = rs.TimeForEachPlayer.Seconds()
	default:
		return nil, fmt.Errorf("encode lobby %s: unknown rule set %T", lobby.ID.Hex(), lobby.RuleSet)
	}
	return json.Marshal(rec)
}

func decodeLobby(raw []byte) (*domain.Lobby, error) {
	var rec lobbyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode lobby: %w", err)
	}

	var ruleSet domain.RuleSet
	switch domain.RuleSetType(rec.Type) {
	case domain.RuleSetConnectFour:
		ruleSet = domain.ConnectFourRuleSet{
			TimeForEachPlayer: secondsToDuration(rec.TimeForEachPlayer),
		}
	default:
		return nil, fmt.Errorf("decode lobby: unknown type %q", rec.Type)
	}

	id, err := domain.ParseLobbyID(rec.ID)
	if err != nil {
		return nil, err
	}
	lobby := &domain.Lobby{
		ID:           id,
		Name:         rec.Name,
		PasswordHash: rec.PasswordHash,
		RuleSet:      ruleSet,
	}
	for _, u := range rec.Users {
		userID, err := domain.ParseUserID(u.ID)
		if err != nil {
			return nil, err
		}
		lobby.Users = append(lobby.Users, domain.LobbyUser{ID: userID, Role: domain.Role(u.Role)})
	}
	for _, s := range rec.AdminQueue {
		userID, err := domain.ParseUserID(s)
		if err != nil {
			return nil, err
		}
		lobby.AdminQueue = append(lobby.AdminQueue, userID)
	}
	return lobby, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
