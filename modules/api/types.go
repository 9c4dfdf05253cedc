package api

import "github.com/example/room-coordinator/domain/room"

// CreateRoomRequest is the body of POST /api/createRoom.
type CreateRoomRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// CreateRoomResponse carries the generated room code.
type CreateRoomResponse struct {
	RoomCode string `json:"roomCode"`
}

// JoinRoomRequest is the body of POST /api/joinRoom.
type JoinRoomRequest struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	RoomCode string `json:"roomCode"`
}

// ConnectedUsersResponse is the body of GET /api/connectedUsers/:roomCode.
// Users is always present, empty if none recorded.
type ConnectedUsersResponse struct {
	Users []room.ConnectedUser `json:"users"`
}

// RoomMessagesResponse is the body of GET /api/roomMessages/:roomCode.
// RoomMessages is omitted entirely for unknown rooms and an empty array for
// known rooms with no messages yet; the pointer keeps those two cases
// distinct on the wire.
type RoomMessagesResponse struct {
	RoomMessages *[]room.Message `json:"roomMessages,omitempty"`
}

// ErrorResponse is the error body for all room API endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
