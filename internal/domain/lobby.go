// internal/domain/lobby.go
package domain

import (
	"golang.org/x/crypto/bcrypt"
)

// Role is a user's standing inside a lobby.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleRegularMember Role = "regular_member"
)

// LobbyUser is one entry of a lobby's ordered membership. Insertion
// order is meaningful: the first entry is the creator.
type LobbyUser struct {
	ID   UserID
	Role Role
}

// Lobby is a waiting room before a game starts.
//
// Invariants while non-empty: exactly one admin; every non-admin
// appears in AdminQueue exactly once; len(Users) never exceeds
// RuleSet.MaxPlayers().
type Lobby struct {
	ID    LobbyID
	Name  string
	Users []LobbyUser
	// AdminQueue is the FIFO of admin-role successors. It never
	// contains the current admin.
	AdminQueue   []UserID
	PasswordHash string
	RuleSet      RuleSet
}

// NewLobby builds a lobby with the creator as its sole admin and an
// empty transfer queue. passwordHash is empty for open lobbies.
func NewLobby(name string, creator UserID, ruleSet RuleSet, passwordHash string) *Lobby {
	return &Lobby{
		ID:           NewLobbyID(),
		Name:         name,
		Users:        []LobbyUser{{ID: creator, Role: RoleAdmin}},
		AdminQueue:   nil,
		PasswordHash: passwordHash,
		RuleSet:      ruleSet,
	}
}

// HashLobbyPassword hashes a lobby password for storage.
func HashLobbyPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (l *Lobby) HasPassword() bool {
	return l.PasswordHash != ""
}

// Contains reports whether the user is in the lobby.
func (l *Lobby) Contains(userID UserID) bool {
	_, ok := l.RoleOf(userID)
	return ok
}

// RoleOf returns the user's role and whether the user is present.
func (l *Lobby) RoleOf(userID UserID) (Role, bool) {
	for _, u := range l.Users {
		if u.ID == userID {
			return u.Role, true
		}
	}
	return "", false
}

// Admin returns the current admin. ok is false only for an empty lobby.
func (l *Lobby) Admin() (UserID, bool) {
	for _, u := range l.Users {
		if u.Role == RoleAdmin {
			return u.ID, true
		}
	}
	return UserID{}, false
}

// UserIDs returns member ids in insertion order.
func (l *Lobby) UserIDs() []UserID {
	ids := make([]UserID, 0, len(l.Users))
	for _, u := range l.Users {
		ids = append(ids, u.ID)
	}
	return ids
}

// Join adds the user as a regular member and appends them to the
// admin-transfer queue.
func (l *Lobby) Join(userID UserID, password string) error {
	if l.Contains(userID) {
		return ErrUserAlreadyInLobby
	}
	if len(l.Users) >= l.RuleSet.MaxPlayers() {
		return ErrUserLimitReached
	}
	if l.HasPassword() {
		if password == "" {
			return ErrPasswordRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(l.PasswordHash), []byte(password)) != nil {
			return ErrIncorrectPassword
		}
	}
	l.Users = append(l.Users, LobbyUser{ID: userID, Role: RoleRegularMember})
	l.AdminQueue = append(l.AdminQueue, userID)
	return nil
}

// Remove pops the user and manages admin succession. It returns whether
// the lobby is now empty and, when the admin role moved, the id of the
// promoted user (zero otherwise).
func (l *Lobby) Remove(userID UserID) (empty bool, newAdmin UserID, err error) {
	role, ok := l.RoleOf(userID)
	if !ok {
		return false, UserID{}, ErrUserNotInLobby
	}

	l.Users = deleteUser(l.Users, userID)
	if len(l.Users) == 0 {
		return true, UserID{}, nil
	}

	if role != RoleAdmin {
		l.AdminQueue = deleteID(l.AdminQueue, userID)
		return false, UserID{}, nil
	}

	// Admin left: promote the head of the transfer queue. A lobby that
	// still has members must have a successor; an empty queue means the
	// stored record is corrupt.
	if len(l.AdminQueue) == 0 {
		return false, UserID{}, ErrNoAdminSuccessor
	}
	newAdmin = l.AdminQueue[0]
	l.AdminQueue = l.AdminQueue[1:]
	for i := range l.Users {
		if l.Users[i].ID == newAdmin {
			l.Users[i].Role = RoleAdmin
		}
	}
	return false, newAdmin, nil
}

// Kick removes target on behalf of caller. Only the admin may kick,
// and not themselves.
func (l *Lobby) Kick(target, caller UserID) error {
	callerRole, ok := l.RoleOf(caller)
	if !ok {
		return ErrUserNotInLobby
	}
	if callerRole != RoleAdmin {
		return ErrUserIsNotAdmin
	}
	if target == caller {
		return ErrUserIsTryingKickHimself
	}
	if !l.Contains(target) {
		return ErrUserNotInLobby
	}
	l.Users = deleteUser(l.Users, target)
	l.AdminQueue = deleteID(l.AdminQueue, target)
	return nil
}

func deleteUser(users []LobbyUser, id UserID) []LobbyUser {
	out := users[:0]
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

func deleteID(ids []UserID, id UserID) []UserID {
	out := ids[:0]
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}
