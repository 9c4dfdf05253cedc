package broadcast

import "github.com/example/room-coordinator/domain/room"

// MessagePayload is the data of an outbound handleSendMessage frame.
type MessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}

// TypingPayload is the data of an outbound typing frame.
type TypingPayload struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// UsersUpdatedPayload is the data of an outbound updatedUsers frame.
type UsersUpdatedPayload struct {
	Code    string               `json:"code"`
	Users   []room.ConnectedUser `json:"users"`
	NewUser string               `json:"newUser"`
}
