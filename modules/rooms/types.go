package rooms

import "github.com/example/room-coordinator/domain/room"

// Request-reply service names exposed by the rooms module.
const (
	ServiceCreateRoom     = "create-room"
	ServiceJoinRoom       = "join-room"
	ServiceConnectedUsers = "get-connected-users"
	ServiceRoomMessages   = "get-room-messages"
	ServiceAppendMessage  = "append-message"
	ServiceAssociateConn  = "associate-connection"
	ServiceDissociateConn = "dissociate-connection"
)

// CreateRoomRequest asks for a new room with the creator as sole member.
type CreateRoomRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// CreateRoomResponse carries the generated room code.
type CreateRoomResponse struct {
	RoomCode string `json:"room_code"`
}

// JoinRoomRequest adds a user to an existing room.
type JoinRoomRequest struct {
	Username string `json:"username"`
	UserID   string `json:"user_id"`
	RoomCode string `json:"room_code"`
}

// JoinRoomResponse reports the outcome and the updated presence list.
type JoinRoomResponse struct {
	Success bool                 `json:"success"`
	Users   []room.ConnectedUser `json:"users,omitempty"`
}

// ConnectedUsersRequest queries a room's presence list.
type ConnectedUsersRequest struct {
	RoomCode string `json:"room_code"`
}

// ConnectedUsersResponse carries the presence list, empty if none recorded.
type ConnectedUsersResponse struct {
	Users []room.ConnectedUser `json:"users"`
}

// RoomMessagesRequest queries a room's message history.
type RoomMessagesRequest struct {
	RoomCode string `json:"room_code"`
}

// RoomMessagesResponse carries the history. Found is false for unknown rooms.
type RoomMessagesResponse struct {
	Found    bool           `json:"found"`
	Messages []room.Message `json:"messages"`
}

// AppendMessageRequest appends a relayed chat message to its room's history.
type AppendMessageRequest struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}

// AppendMessageResponse reports whether the message was stored. Messages
// for unknown rooms are dropped without error.
type AppendMessageResponse struct {
	Stored bool `json:"stored"`
}

// AssociateRequest binds a user identity to a connection handle.
type AssociateRequest struct {
	UserID string `json:"user_id"`
	ConnID string `json:"conn_id"`
}

// AssociateResponse acknowledges an association.
type AssociateResponse struct {
	Success bool `json:"success"`
}

// DissociateRequest tears down state for a disconnecting connection.
type DissociateRequest struct {
	ConnID string `json:"conn_id"`
}

// DissociateResponse carries the identity that was bound to the connection.
type DissociateResponse struct {
	UserID string `json:"user_id,omitempty"`
	Found  bool   `json:"found"`
}
