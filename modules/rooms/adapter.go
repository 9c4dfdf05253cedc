package rooms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/room-coordinator/domain/room"
)

// RoomsPort defines the interface other modules use to reach the rooms
// module through the service container.
type RoomsPort interface {
	CreateRoom(ctx context.Context, userID, username string) (string, error)
	JoinRoom(ctx context.Context, username, userID, roomCode string) ([]room.ConnectedUser, error)
	ConnectedUsers(ctx context.Context, roomCode string) ([]room.ConnectedUser, error)
	RoomMessages(ctx context.Context, roomCode string) ([]room.Message, bool, error)
	AppendMessage(ctx context.Context, msg room.Message) (bool, error)
	Associate(ctx context.Context, userID, connID string) error
	Dissociate(ctx context.Context, connID string) (string, bool, error)
}

// Adapter implements RoomsPort using request-reply service calls.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a new Adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	if container == nil {
		panic("rooms: ServiceContainer is nil")
	}
	return &Adapter{container: container}
}

var _ RoomsPort = (*Adapter)(nil)

// CreateRoom creates a room and returns its generated code.
func (a *Adapter) CreateRoom(ctx context.Context, userID, username string) (string, error) {
	req := CreateRoomRequest{UserID: userID, Username: username}
	var resp CreateRoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceCreateRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	return resp.RoomCode, nil
}

// JoinRoom adds a user to a room and returns the updated presence list.
// ErrRoomNotFound is returned when the code has no registry entry.
func (a *Adapter) JoinRoom(ctx context.Context, username, userID, roomCode string) ([]room.ConnectedUser, error) {
	req := JoinRoomRequest{Username: username, UserID: userID, RoomCode: roomCode}
	var resp JoinRoomResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceJoinRoom,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}
	if !resp.Success {
		return nil, ErrRoomNotFound
	}
	return resp.Users, nil
}

// ConnectedUsers returns a room's presence list, empty if none recorded.
func (a *Adapter) ConnectedUsers(ctx context.Context, roomCode string) ([]room.ConnectedUser, error) {
	req := ConnectedUsersRequest{RoomCode: roomCode}
	var resp ConnectedUsersResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceConnectedUsers,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get connected users: %w", err)
	}
	return resp.Users, nil
}

// RoomMessages returns a room's history; the bool is false for unknown rooms.
func (a *Adapter) RoomMessages(ctx context.Context, roomCode string) ([]room.Message, bool, error) {
	req := RoomMessagesRequest{RoomCode: roomCode}
	var resp RoomMessagesResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRoomMessages,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, false, fmt.Errorf("failed to get room messages: %w", err)
	}
	return resp.Messages, resp.Found, nil
}

// AppendMessage appends a relayed message to its room's history.
// It reports false without error when the room is unknown.
func (a *Adapter) AppendMessage(ctx context.Context, msg room.Message) (bool, error) {
	req := AppendMessageRequest{Username: msg.Username, Message: msg.Message, Code: msg.Code}
	var resp AppendMessageResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceAppendMessage,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return false, fmt.Errorf("failed to append message: %w", err)
	}
	return resp.Stored, nil
}

// Associate binds a user identity to a connection handle.
func (a *Adapter) Associate(ctx context.Context, userID, connID string) error {
	req := AssociateRequest{UserID: userID, ConnID: connID}
	var resp AssociateResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceAssociateConn,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("failed to associate connection: %w", err)
	}
	return nil
}

// Dissociate tears down state for a disconnecting connection and returns
// the identity that was bound to it, if any.
func (a *Adapter) Dissociate(ctx context.Context, connID string) (string, bool, error) {
	req := DissociateRequest{ConnID: connID}
	var resp DissociateResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceDissociateConn,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return "", false, fmt.Errorf("failed to dissociate connection: %w", err)
	}
	return resp.UserID, resp.Found, nil
}
