package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/example/room-coordinator/domain/room"
	"github.com/example/room-coordinator/modules/rooms"
)

// Missing-field responses use 404 instead of 400. The original coordinator
// shipped that way and its clients key off the status code, so the quirk is
// part of the wire contract.
const (
	missingIdentityMessage  = "Room creator identity is not provided."
	missingArgumentsMessage = "Not enough arguments provided"
)

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// createRoom handles POST /api/createRoom.
func (m *Module) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid request body",
		})
	}

	if req.UserID == "" || req.Username == "" {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: missingIdentityMessage,
		})
	}

	code, err := m.rooms.CreateRoom(c.UserContext(), req.UserID, req.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to create room",
		})
	}

	return c.JSON(CreateRoomResponse{RoomCode: code})
}

// joinRoom handles POST /api/joinRoom. On success the rooms module
// publishes an updatedUsers broadcast to every connection, the joiner's
// own included.
func (m *Module) joinRoom(c *fiber.Ctx) error {
	var req JoinRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid request body",
		})
	}

	if req.Username == "" || req.UserID == "" || req.RoomCode == "" {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: missingArgumentsMessage,
		})
	}

	if _, err := m.rooms.JoinRoom(c.UserContext(), req.Username, req.UserID, req.RoomCode); err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: fmt.Sprintf("Room %s does not exist.", req.RoomCode),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to join room",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

// connectedUsers handles GET /api/connectedUsers/:roomCode. Unknown rooms
// yield an empty list, not an error.
func (m *Module) connectedUsers(c *fiber.Ctx) error {
	roomCode := c.Params("roomCode")

	users, err := m.rooms.ConnectedUsers(c.UserContext(), roomCode)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to get connected users",
		})
	}
	if users == nil {
		users = []room.ConnectedUser{}
	}

	return c.JSON(ConnectedUsersResponse{Users: users})
}

// roomMessages handles GET /api/roomMessages/:roomCode. The roomMessages
// field is absent for unknown rooms and an empty array for known rooms
// with no history yet.
func (m *Module) roomMessages(c *fiber.Ctx) error {
	roomCode := c.Params("roomCode")

	messages, found, err := m.rooms.RoomMessages(c.UserContext(), roomCode)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to get room messages",
		})
	}
	if !found {
		return c.JSON(RoomMessagesResponse{})
	}
	if messages == nil {
		messages = []room.Message{}
	}

	return c.JSON(RoomMessagesResponse{RoomMessages: &messages})
}
