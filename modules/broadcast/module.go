package broadcast

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/room-coordinator/events"
)

// Outbound event names on the client channel. They mirror the inbound
// names so existing clients can listen symmetrically.
const (
	EventSendMessage  = "handleSendMessage"
	EventTyping       = "typing"
	EventUpdatedUsers = "updatedUsers"
)

// Module consumes room events from the bus and fans them out to WebSocket
// clients through the hub.
//
// Chat and typing events are delivered to every connection except the
// origin, regardless of room membership. That matches the coordinator's
// observed contract; clients filter by the room code carried in the
// payload. updatedUsers reaches all connections, the joiner included.
type Module struct {
	hub       *Hub
	cancelHub context.CancelFunc
	logger    *slog.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new broadcast module.
func NewModule() *Module {
	return &Module{
		hub:    NewHub(),
		logger: slog.Default().With("module", "broadcast"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "broadcast"
}

// Start starts the hub run loop.
func (m *Module) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	m.logger.Info("Broadcast module started")
	return nil
}

// Stop shuts down the hub and closes all client connections.
func (m *Module) Stop(_ context.Context) error {
	clients := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	m.logger.Info("Broadcast module stopped", "clients", clients)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// RegisterEventConsumers registers bus event handlers.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TypingStartedV1, m.handleTypingStarted, m,
	); err != nil {
		return fmt.Errorf("failed to register TypingStarted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UsersUpdatedV1, m.handleUsersUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register UsersUpdated consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"MessageSent", "TypingStarted", "UsersUpdated"})
	return nil
}

// GetHub returns the hub for the gateway and API modules to use.
func (m *Module) GetHub() *Hub {
	return m.hub
}

// Event handlers

func (m *Module) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.logger.Debug("Broadcasting chat message",
		"username", event.Username, "code", event.Code)

	m.hub.Broadcast(event.OriginConnID, EventSendMessage, MessagePayload{
		Username: event.Username,
		Message:  event.Message,
		Code:     event.Code,
	})
	return nil
}

func (m *Module) handleTypingStarted(_ context.Context, event events.TypingStartedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(event.OriginConnID, EventTyping, TypingPayload{
		Username: event.Username,
		Code:     event.Code,
	})
	return nil
}

func (m *Module) handleUsersUpdated(_ context.Context, event events.UsersUpdatedEvent, _ *mono.Msg) error {
	m.logger.Debug("Broadcasting updated users",
		"code", event.Code, "newUser", event.NewUser)

	m.hub.Broadcast("", EventUpdatedUsers, UsersUpdatedPayload{
		Code:    event.Code,
		Users:   event.Users,
		NewUser: event.NewUser,
	})
	return nil
}
