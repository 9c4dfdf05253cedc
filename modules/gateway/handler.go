package gateway

import (
	"context"
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/example/room-coordinator/domain/room"
	"github.com/example/room-coordinator/events"
	"github.com/example/room-coordinator/modules/broadcast"
	"github.com/example/room-coordinator/modules/rooms"
)

// HandleConnection runs the read loop for one WebSocket connection. It
// registers the connection with the hub, dispatches inbound events, and
// tears down presence state on disconnect.
//
// Per connection the lifecycle is Connected (handle allocated) ->
// Identified (associateSocketId received) -> Disconnected. Identification
// is idempotent; the last association wins.
func (m *Module) HandleConnection(c *websocket.Conn) {
	connID := uuid.New().String()
	client := &broadcast.Client{ID: connID, Conn: c}

	m.hub.Register(client)
	m.logger.Info("Connection opened", "connId", connID)

	defer func() {
		userID, found, err := m.rooms.Dissociate(context.Background(), connID)
		if err != nil {
			m.logger.Warn("Disconnect cleanup failed", "connId", connID, "error", err)
		} else if found {
			m.logger.Info("User disconnected", "connId", connID, "userId", userID)
		}
		m.hub.Unregister(client)
		m.logger.Info("Connection closed", "connId", connID)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Debug("Client closed connection", "connId", connID)
			} else {
				m.logger.Debug("Read error", "connId", connID, "error", err)
			}
			return
		}
		m.dispatch(client, data)
	}
}

// dispatch decodes one inbound frame and routes it. A panic in a handler is
// contained here so one faulting event cannot kill the read loop or affect
// other connections.
func (m *Module) dispatch(client *broadcast.Client, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Event handler panicked",
				"connId", client.ID, "panic", r)
		}
	}()

	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Event == "" {
		m.reject(client, rooms.ErrInvalidPayload.Error())
		return
	}

	switch frame.Event {
	case EventAssociate:
		m.handleAssociate(client, frame.Data)
	case EventSendMessage:
		m.handleSendMessage(client, frame.Data)
	case EventTyping:
		m.handleTyping(client, frame.Data)
	default:
		m.reject(client, "unknown event: "+frame.Event)
	}
}

func (m *Module) handleAssociate(client *broadcast.Client, data json.RawMessage) {
	var payload associatePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID == "" {
		m.reject(client, rooms.ErrInvalidPayload.Error())
		return
	}

	if err := m.rooms.Associate(context.Background(), payload.UserID, client.ID); err != nil {
		m.logger.Warn("Association failed",
			"connId", client.ID, "userId", payload.UserID, "error", err)
		return
	}
	m.logger.Info("User associated with connection",
		"userId", payload.UserID, "connId", client.ID)
}

// handleSendMessage appends the message to its room's history (best-effort;
// messages for unknown rooms are dropped) and relays it to every other
// connection via the bus.
func (m *Module) handleSendMessage(client *broadcast.Client, data json.RawMessage) {
	var payload messagePayload
	if err := json.Unmarshal(data, &payload); err != nil ||
		payload.Username == "" || payload.Code == "" {
		m.reject(client, rooms.ErrInvalidPayload.Error())
		return
	}

	stored, err := m.rooms.AppendMessage(context.Background(), room.Message{
		Username: payload.Username,
		Message:  payload.Message,
		Code:     payload.Code,
	})
	if err != nil {
		m.logger.Warn("Failed to store message", "code", payload.Code, "error", err)
	} else if !stored {
		m.logger.Debug("Message for unknown room not stored", "code", payload.Code)
	}

	event := events.MessageSentEvent{
		OriginConnID: client.ID,
		Username:     payload.Username,
		Message:      payload.Message,
		Code:         payload.Code,
	}
	if err := m.publishMessage(event); err != nil {
		m.logger.Warn("Failed to publish MessageSent event", "error", err)
	}
}

func (m *Module) handleTyping(client *broadcast.Client, data json.RawMessage) {
	var payload typingPayload
	if err := json.Unmarshal(data, &payload); err != nil ||
		payload.Username == "" || payload.Code == "" {
		m.reject(client, rooms.ErrInvalidPayload.Error())
		return
	}

	event := events.TypingStartedEvent{
		OriginConnID: client.ID,
		Username:     payload.Username,
		Code:         payload.Code,
	}
	if err := m.publishTyping(event); err != nil {
		m.logger.Warn("Failed to publish TypingStarted event", "error", err)
	}
}

// reject sends an error frame to the client without closing the connection.
func (m *Module) reject(client *broadcast.Client, reason string) {
	m.logger.Debug("Rejecting event", "connId", client.ID, "reason", reason)
	if err := m.send(client, EventError, errorPayload{Error: reason}); err != nil {
		m.logger.Debug("Failed to send error frame", "connId", client.ID, "error", err)
	}
}
