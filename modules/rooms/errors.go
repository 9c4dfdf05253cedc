package rooms

import "errors"

// Sentinel errors for room operations.
var (
	// ErrMissingIdentity is returned when room creation lacks a userId or username.
	ErrMissingIdentity = errors.New("room creator identity is not provided")

	// ErrMissingArguments is returned when a join request lacks required fields.
	ErrMissingArguments = errors.New("not enough arguments provided")

	// ErrRoomNotFound is returned when the referenced room code has no registry entry.
	ErrRoomNotFound = errors.New("room not found")

	// ErrInvalidPayload is returned when a realtime event payload is malformed.
	ErrInvalidPayload = errors.New("invalid event payload")

	// ErrCodeExhausted is returned when code generation keeps colliding.
	ErrCodeExhausted = errors.New("could not generate a unique room code")
)
