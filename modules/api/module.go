package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/room-coordinator/internal/config"
	"github.com/example/room-coordinator/modules/broadcast"
	"github.com/example/room-coordinator/modules/gateway"
	"github.com/example/room-coordinator/modules/rooms"
)

// Module is the HTTP surface: the room API routes and the /ws upgrade
// endpoint, served by one Fiber app.
type Module struct {
	app     *fiber.App
	rooms   rooms.RoomsPort
	hub     *broadcast.Hub
	gateway *gateway.Module
	cfg     config.Config
	logger  *slog.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new API module.
func NewModule(cfg config.Config) *Module {
	return &Module{
		cfg:    cfg,
		logger: slog.Default().With("module", "api"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
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

// SetHub sets the broadcast hub (wired from main).
func (m *Module) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// SetGateway sets the realtime gateway whose handler serves /ws
// (wired from main).
func (m *Module) SetGateway(g *gateway.Module) {
	m.gateway = g
}

// Start initializes and starts the Fiber HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.rooms == nil {
		return fmt.Errorf("rooms adapter dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("broadcast hub dependency not set")
	}
	if m.gateway == nil {
		return fmt.Errorf("gateway dependency not set")
	}

	m.buildApp()

	// Start server in goroutine with startup error detection.
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.cfg.Port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "port", m.cfg.Port)
	return nil
}

// Stop gracefully shuts down the Fiber HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":              m.cfg.Port,
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// buildApp creates the Fiber app with middleware and routes.
func (m *Module) buildApp() {
	m.app = fiber.New(fiber.Config{
		AppName:               "Room Coordinator",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: m.cfg.CORSAllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	m.setupRoutes()
}

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes() {
	m.app.Get("/health", m.healthHandler)

	// WebSocket upgrade middleware + endpoint.
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.gateway.HandleConnection))

	api := m.app.Group("/api")
	api.Post("/createRoom", m.createRoom)
	api.Post("/joinRoom", m.joinRoom)
	api.Get("/connectedUsers/:roomCode", m.connectedUsers)
	api.Get("/roomMessages/:roomCode", m.roomMessages)
}

// errorHandler handles Fiber errors globally.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	m.logger.Error("HTTP error", "code", code, "error", err)

	return c.Status(code).JSON(ErrorResponse{Error: message})
}

// App exposes the Fiber app to package tests.
func (m *Module) App() *fiber.App {
	return m.app
}
