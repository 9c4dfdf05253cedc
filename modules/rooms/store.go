package rooms

import (
	"sync"

	"github.com/example/room-coordinator/domain/room"
)

// RoomStore provides thread-safe storage for rooms, the per-room presence
// lists, and the user-to-connection association.
//
// Presence is keyed strictly by room code. A reverse index from userID to
// room code, together with the connection association, makes disconnect
// cleanup O(1) and removes only the departing user's presence entry.
type RoomStore struct {
	mu         sync.RWMutex
	rooms      map[string]*room.Room
	presence   map[string][]room.ConnectedUser // room code -> connected users
	userRoom   map[string]string               // userID -> room code
	userConn   map[string]string               // userID -> connection ID
	connUser   map[string]string               // connection ID -> userID
	maxHistory int
}

// NewRoomStore creates a new store. maxHistory caps per-room message
// history; zero or negative disables the cap.
func NewRoomStore(maxHistory int) *RoomStore {
	return &RoomStore{
		rooms:      make(map[string]*room.Room),
		presence:   make(map[string][]room.ConnectedUser),
		userRoom:   make(map[string]string),
		userConn:   make(map[string]string),
		connUser:   make(map[string]string),
		maxHistory: maxHistory,
	}
}

// CreateRoom inserts a new room with the creator as sole member of both the
// registry and the presence list. It returns false without mutating state
// if the code is already taken.
func (s *RoomStore) CreateRoom(code, userID, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[code]; exists {
		return false
	}

	s.rooms[code] = &room.Room{
		Code:  code,
		Users: []string{userID},
	}
	s.upsertPresence(code, room.ConnectedUser{UserID: userID, Username: username})
	return true
}

// HasRoom reports whether a room code is registered.
func (s *RoomStore) HasRoom(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.rooms[code]
	return exists
}

// JoinRoom adds a user to an existing room's registry and presence list and
// returns the updated presence list. Rejoining with a known userID is an
// idempotent upsert: the username is refreshed in place, order preserved.
func (s *RoomStore) JoinRoom(code, userID, username string) ([]room.ConnectedUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[code]
	if !exists {
		return nil, ErrRoomNotFound
	}

	if !contains(r.Users, userID) {
		r.Users = append(r.Users, userID)
	}
	s.upsertPresence(code, room.ConnectedUser{UserID: userID, Username: username})

	return s.copyPresence(code), nil
}

// ConnectedUsers returns the presence list for a room, in join order.
// The slice is always non-nil; unknown rooms yield an empty list.
func (s *RoomStore) ConnectedUsers(code string) []room.ConnectedUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyPresence(code)
}

// Messages returns a copy of a room's history. The second return is false
// when the room is unknown; a known room with no messages yields an empty,
// non-nil slice.
func (s *RoomStore) Messages(code string) ([]room.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.rooms[code]
	if !exists {
		return nil, false
	}

	out := make([]room.Message, len(r.Messages))
	copy(out, r.Messages)
	return out, true
}

// AppendMessage appends a message to its room's history. Messages for
// unknown rooms are dropped and false is returned; the caller may still
// broadcast them, matching the coordinator's best-effort relay contract.
func (s *RoomStore) AppendMessage(msg room.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[msg.Code]
	if !exists {
		return false
	}

	r.Messages = append(r.Messages, msg)
	if s.maxHistory > 0 && len(r.Messages) > s.maxHistory {
		r.Messages = r.Messages[len(r.Messages)-s.maxHistory:]
	}
	return true
}

// Associate records the connection handle for a user identity.
// Last write wins; re-association replaces any previous handle.
func (s *RoomStore) Associate(userID, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.userConn[userID]; ok {
		delete(s.connUser, prev)
	}
	s.userConn[userID] = connID
	s.connUser[connID] = userID
}

// Dissociate tears down the state for a disconnecting connection: the
// association in both directions and the user's presence entry in the room
// found via the reverse index. It returns the user identity that was bound
// to the connection, if any.
func (s *RoomStore) Dissociate(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.connUser[connID]
	if !ok {
		return "", false
	}

	delete(s.connUser, connID)
	delete(s.userConn, userID)

	if code, ok := s.userRoom[userID]; ok {
		delete(s.userRoom, userID)
		s.presence[code] = removeUser(s.presence[code], userID)
	}
	return userID, true
}

// Connection returns the connection handle associated with a user identity.
func (s *RoomStore) Connection(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	connID, ok := s.userConn[userID]
	return connID, ok
}

// RoomCount returns the number of registered rooms.
func (s *RoomStore) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// upsertPresence appends the user to the room's presence list, or refreshes
// the username in place if the userID is already present. Callers must hold
// the write lock.
func (s *RoomStore) upsertPresence(code string, user room.ConnectedUser) {
	users := s.presence[code]
	for i := range users {
		if users[i].UserID == user.UserID {
			users[i].Username = user.Username
			s.userRoom[user.UserID] = code
			return
		}
	}
	s.presence[code] = append(users, user)
	s.userRoom[user.UserID] = code
}

func (s *RoomStore) copyPresence(code string) []room.ConnectedUser {
	users := s.presence[code]
	out := make([]room.ConnectedUser, len(users))
	copy(out, users)
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func removeUser(users []room.ConnectedUser, userID string) []room.ConnectedUser {
	for i := range users {
		if users[i].UserID == userID {
			return append(users[:i], users[i+1:]...)
		}
	}
	return users
}
