package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/room-coordinator/domain/room"
	"github.com/example/room-coordinator/events"
)

// Module owns the room registry, presence tracking, and code generation,
// exposed to the rest of the application as request-reply services.
type Module struct {
	store    *RoomStore
	gen      *CodeGenerator
	eventBus mono.EventBus
	logger   *slog.Logger
	attempts int
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the rooms module. maxHistory caps per-room history
// (0 disables); codeAttempts bounds code-collision retries.
func NewModule(maxHistory, codeAttempts int) (*Module, error) {
	gen, err := NewCodeGenerator()
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}
	if codeAttempts <= 0 {
		codeAttempts = DefaultCodeAttempts
	}
	return &Module{
		store:    NewRoomStore(maxHistory),
		gen:      gen,
		logger:   slog.Default().With("module", "rooms"),
		attempts: codeAttempts,
	}, nil
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rooms"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UsersUpdatedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	services := []struct {
		name     string
		register func() error
	}{
		{ServiceCreateRoom, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceCreateRoom, json.Unmarshal, json.Marshal, m.createRoom)
		}},
		{ServiceJoinRoom, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceJoinRoom, json.Unmarshal, json.Marshal, m.joinRoom)
		}},
		{ServiceConnectedUsers, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceConnectedUsers, json.Unmarshal, json.Marshal, m.connectedUsers)
		}},
		{ServiceRoomMessages, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceRoomMessages, json.Unmarshal, json.Marshal, m.roomMessages)
		}},
		{ServiceAppendMessage, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceAppendMessage, json.Unmarshal, json.Marshal, m.appendMessage)
		}},
		{ServiceAssociateConn, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceAssociateConn, json.Unmarshal, json.Marshal, m.associate)
		}},
		{ServiceDissociateConn, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceDissociateConn, json.Unmarshal, json.Marshal, m.dissociate)
		}},
	}

	for _, svc := range services {
		if err := svc.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", svc.name, err)
		}
	}

	m.logger.Info("Registered room services")
	return nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Rooms module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Rooms module stopped", "rooms", m.store.RoomCount())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms": m.store.RoomCount(),
		},
	}
}

// Store exposes the room store to package tests.
func (m *Module) Store() *RoomStore {
	return m.store
}

// Service handlers

func (m *Module) createRoom(_ context.Context, req CreateRoomRequest, _ *mono.Msg) (CreateRoomResponse, error) {
	if req.UserID == "" || req.Username == "" {
		return CreateRoomResponse{}, ErrMissingIdentity
	}

	for i := 0; i < m.attempts; i++ {
		code := m.gen.Generate()
		if m.store.CreateRoom(code, req.UserID, req.Username) {
			m.logger.Info("Room created", "code", code, "userId", req.UserID)
			return CreateRoomResponse{RoomCode: code}, nil
		}
		m.logger.Warn("Room code collision, regenerating", "code", code)
	}
	return CreateRoomResponse{}, ErrCodeExhausted
}

func (m *Module) joinRoom(_ context.Context, req JoinRoomRequest, _ *mono.Msg) (JoinRoomResponse, error) {
	if req.Username == "" || req.UserID == "" || req.RoomCode == "" {
		return JoinRoomResponse{}, ErrMissingArguments
	}

	users, err := m.store.JoinRoom(req.RoomCode, req.UserID, req.Username)
	if err != nil {
		return JoinRoomResponse{Success: false}, nil
	}

	if m.eventBus != nil {
		event := events.UsersUpdatedEvent{
			Code:    req.RoomCode,
			Users:   users,
			NewUser: req.Username,
		}
		if err := events.UsersUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish UsersUpdated event", "error", err)
		}
	}

	m.logger.Info("User joined room", "userId", req.UserID, "code", req.RoomCode)
	return JoinRoomResponse{Success: true, Users: users}, nil
}

func (m *Module) connectedUsers(_ context.Context, req ConnectedUsersRequest, _ *mono.Msg) (ConnectedUsersResponse, error) {
	return ConnectedUsersResponse{
		Users: m.store.ConnectedUsers(req.RoomCode),
	}, nil
}

func (m *Module) roomMessages(_ context.Context, req RoomMessagesRequest, _ *mono.Msg) (RoomMessagesResponse, error) {
	messages, found := m.store.Messages(req.RoomCode)
	return RoomMessagesResponse{Found: found, Messages: messages}, nil
}

func (m *Module) appendMessage(_ context.Context, req AppendMessageRequest, _ *mono.Msg) (AppendMessageResponse, error) {
	stored := m.store.AppendMessage(room.Message{
		Username: req.Username,
		Message:  req.Message,
		Code:     req.Code,
	})
	if !stored {
		m.logger.Debug("Message for unknown room dropped", "code", req.Code)
	}
	return AppendMessageResponse{Stored: stored}, nil
}

func (m *Module) associate(_ context.Context, req AssociateRequest, _ *mono.Msg) (AssociateResponse, error) {
	if req.UserID == "" || req.ConnID == "" {
		return AssociateResponse{}, ErrInvalidPayload
	}
	m.store.Associate(req.UserID, req.ConnID)
	m.logger.Debug("User associated with connection", "userId", req.UserID, "connId", req.ConnID)
	return AssociateResponse{Success: true}, nil
}

func (m *Module) dissociate(_ context.Context, req DissociateRequest, _ *mono.Msg) (DissociateResponse, error) {
	userID, found := m.store.Dissociate(req.ConnID)
	if found {
		m.logger.Debug("User dissociated", "userId", userID, "connId", req.ConnID)
	}
	return DissociateResponse{UserID: userID, Found: found}, nil
}
