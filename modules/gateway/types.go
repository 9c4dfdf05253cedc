package gateway

import "encoding/json"

// Inbound event names on the client channel.
const (
	EventAssociate   = "associateSocketId"
	EventSendMessage = "handleSendMessage"
	EventTyping      = "typing"
	EventError       = "error"
)

// inboundFrame is the wire envelope for events received from a client.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// associatePayload binds the client's stable identity to this connection.
type associatePayload struct {
	UserID string `json:"userId"`
}

// messagePayload is the data of an inbound handleSendMessage frame.
type messagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}

// typingPayload is the data of an inbound typing frame.
type typingPayload struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// errorPayload is the data of an outbound error frame.
type errorPayload struct {
	Error string `json:"error"`
}
