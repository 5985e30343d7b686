// internal/domain/ids.go
package domain

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// LobbyID identifies a lobby. Time-ordered (UUIDv7) so that key scans
// and logs sort by creation time.
type LobbyID uuid.UUID

// GameID identifies an active game. Time-ordered (UUIDv7).
type GameID uuid.UUID

// UserID identifies a user. Assigned by the gateway, carried on every
// inbound message.
type UserID uuid.UUID

// PlayerStateID identifies one connectivity epoch of one player. It is
// random (UUIDv4) and rotated on every connect/disconnect toggle, which
// is what invalidates in-flight disqualification timers.
type PlayerStateID uuid.UUID

// OperationID correlates everything a single request touches: emitted
// events, scheduled tasks and log records. Time-ordered (UUIDv7).
type OperationID uuid.UUID

func NewLobbyID() LobbyID {
	return LobbyID(mustV7())
}

func NewGameID() GameID {
	return GameID(mustV7())
}

func NewPlayerStateID() PlayerStateID {
	return PlayerStateID(uuid.New())
}

func NewOperationID() OperationID {
	return OperationID(mustV7())
}

// mustV7 falls back to a random UUID if the monotonic v7 source fails,
// which only happens when the clock is unreadable.
func mustV7() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

func (id LobbyID) Hex() string       { return hexEncode(uuid.UUID(id)) }
func (id GameID) Hex() string        { return hexEncode(uuid.UUID(id)) }
func (id UserID) Hex() string        { return hexEncode(uuid.UUID(id)) }
func (id PlayerStateID) Hex() string { return hexEncode(uuid.UUID(id)) }
func (id OperationID) Hex() string   { return hexEncode(uuid.UUID(id)) }

func (id LobbyID) IsZero() bool       { return uuid.UUID(id) == uuid.Nil }
func (id GameID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }
func (id PlayerStateID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id OperationID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func ParseLobbyID(s string) (LobbyID, error) {
	id, err := parseHex(s)
	return LobbyID(id), err
}

func ParseGameID(s string) (GameID, error) {
	id, err := parseHex(s)
	return GameID(id), err
}

func ParseUserID(s string) (UserID, error) {
	id, err := parseHex(s)
	return UserID(id), err
}

func ParsePlayerStateID(s string) (PlayerStateID, error) {
	id, err := parseHex(s)
	return PlayerStateID(id), err
}

func ParseOperationID(s string) (OperationID, error) {
	id, err := parseHex(s)
	return OperationID(id), err
}

// hexEncode renders a UUID as 32 lowercase hex characters, no dashes.
// This is the wire and key format everywhere in the hub.
func hexEncode(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}

// parseHex accepts both the 32-hex wire format and the canonical
// dashed form, since upstream services are not consistent about it.
func parseHex(s string) (uuid.UUID, error) {
	if len(s) == 32 {
		raw, err := hex.DecodeString(s)
		if err != nil {
			return uuid.Nil, fmt.Errorf("parse id %q: %w", s, err)
		}
		return uuid.FromBytes(raw)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse id %q: %w", s, err)
	}
	return id, nil
}
