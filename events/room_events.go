package events

import (
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/room-coordinator/domain/room"
)

// MessageSentEvent is emitted when a connection relays a chat message.
// OriginConnID identifies the sending connection so the broadcast can
// exclude it.
type MessageSentEvent struct {
	OriginConnID string `json:"origin_conn_id"`
	Username     string `json:"username"`
	Message      string `json:"message"`
	Code         string `json:"code"`
}

// TypingStartedEvent is emitted when a connection signals typing presence.
type TypingStartedEvent struct {
	OriginConnID string `json:"origin_conn_id"`
	Username     string `json:"username"`
	Code         string `json:"code"`
}

// UsersUpdatedEvent is emitted when a user joins a room. It is delivered
// to every connection, including the joiner's own.
type UsersUpdatedEvent struct {
	Code    string               `json:"code"`
	Users   []room.ConnectedUser `json:"users"`
	NewUser string               `json:"newUser"`
}

// Event definitions for the rooms domain.
var (
	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"rooms",
		"MessageSent",
		"v1",
	)

	TypingStartedV1 = helper.EventDefinition[TypingStartedEvent](
		"rooms",
		"TypingStarted",
		"v1",
	)

	UsersUpdatedV1 = helper.EventDefinition[UsersUpdatedEvent](
		"rooms",
		"UsersUpdated",
		"v1",
	)
)
