package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-monolith/mono"

	"github.com/example/room-coordinator/events"
	"github.com/example/room-coordinator/modules/broadcast"
	"github.com/example/room-coordinator/modules/rooms"
)

// Module is the realtime gateway: it owns the per-connection WebSocket
// handling and relays chat and typing events onto the bus.
type Module struct {
	hub      *broadcast.Hub
	rooms    rooms.RoomsPort
	eventBus mono.EventBus
	logger   *slog.Logger

	// Seams for tests; wired to the hub and the event bus by default.
	send           func(client *broadcast.Client, event string, payload any) error
	publishMessage func(event events.MessageSentEvent) error
	publishTyping  func(event events.TypingStartedEvent) error
}

// Compile-time interface checks.
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.DependentModule     = (*Module)(nil)
	_ mono.EventBusAwareModule = (*Module)(nil)
	_ mono.EventEmitterModule  = (*Module)(nil)
)

// NewModule creates a new gateway module.
func NewModule() *Module {
	m := &Module{
		logger: slog.Default().With("module", "gateway"),
	}
	m.publishMessage = func(event events.MessageSentEvent) error {
		if m.eventBus == nil {
			return fmt.Errorf("event bus not set")
		}
		return events.MessageSentV1.Publish(m.eventBus, event, nil)
	}
	m.publishTyping = func(event events.TypingStartedEvent) error {
		if m.eventBus == nil {
			return fmt.Errorf("event bus not set")
		}
		return events.TypingStartedV1.Publish(m.eventBus, event, nil)
	}
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "gateway"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"rooms"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "rooms" {
		m.rooms = rooms.NewAdapter(container)
	}
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// SetHub sets the broadcast hub (wired from main).
func (m *Module) SetHub(hub *broadcast.Hub) {
	m.hub = hub
	m.send = hub.Send
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageSentV1.ToBase(),
		events.TypingStartedV1.ToBase(),
	}
}

// Start verifies wiring.
func (m *Module) Start(_ context.Context) error {
	if m.rooms == nil {
		return fmt.Errorf("rooms adapter dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("broadcast hub dependency not set")
	}
	m.logger.Info("Gateway module started")
	return nil
}

// Stop shuts down the module. Open connections are closed by the hub.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Gateway module stopped")
	return nil
}
