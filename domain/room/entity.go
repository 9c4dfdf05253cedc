package room

// Room groups users and their message history under a generated code.
type Room struct {
	Code     string    `json:"code"`
	Users    []string  `json:"users"`
	Messages []Message `json:"messages,omitempty"`
}

// ConnectedUser is a live, connection-backed member of a room.
type ConnectedUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Message is an immutable chat message; ordering is append order at the server.
type Message struct {
	Username string `json:"username"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}
