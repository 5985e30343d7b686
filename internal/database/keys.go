// internal/database/keys.go
package database

import (
	"sort"
	"strings"

	"github.com/gaems12/connection-hub/internal/domain"
)

// The member set is embedded in the entity key. That makes "find lobby
// by user" a pattern scan instead of a secondary index, which is how
// the one-presence-per-user rule is enforced without extra bookkeeping.

func lobbyKey(lobbyID domain.LobbyID, userIDs []domain.UserID) string {
	return "lobbies:id:" + lobbyID.Hex() + ":user_ids:" + joinSortedHex(userIDs)
}

func lobbyByIDPattern(lobbyID domain.LobbyID) string {
	return "lobbies:id:" + lobbyID.Hex() + ":user_ids:*"
}

func lobbyByUserIDPattern(userID domain.UserID) string {
	return "lobbies:id:*:user_ids:*" + userID.Hex() + "*"
}

func lobbyLockID(lobbyID domain.LobbyID) string {
	return "lobbies:id:" + lobbyID.Hex()
}

func gameKey(gameID domain.GameID, playerIDs []domain.UserID) string {
	return "games:id:" + gameID.Hex() + ":player_ids:" + joinSortedHex(playerIDs)
}

func gameByIDPattern(gameID domain.GameID) string {
	return "games:id:" + gameID.Hex() + ":player_ids:*"
}

func gameByPlayerIDPattern(playerID domain.UserID) string {
	return "games:id:*:player_ids:*" + playerID.Hex() + "*"
}

func gameLockID(gameID domain.GameID) string {
	return "games:id:" + gameID.Hex()
}

// joinSortedHex renders ids sorted and colon-joined, so the same member
// set always produces the same key regardless of insertion order.
func joinSortedHex(ids []domain.UserID) string {
	hexes := make([]string, 0, len(ids))
	for _, id := range ids {
		hexes = append(hexes, id.Hex())
	}
	sort.Strings(hexes)
	return strings.Join(hexes, ":")
}
