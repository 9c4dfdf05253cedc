package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/room-coordinator/internal/config"
	"github.com/example/room-coordinator/modules/api"
	"github.com/example/room-coordinator/modules/broadcast"
	"github.com/example/room-coordinator/modules/gateway"
	"github.com/example/room-coordinator/modules/rooms"
)

func main() {
	log.Println("=== Room Coordinator - Fiber + EventBus Pubsub ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	roomsModule, err := rooms.NewModule(cfg.MaxRoomHistory, cfg.CodeAttempts)
	if err != nil {
		log.Fatalf("Failed to create rooms module: %v", err)
	}
	broadcastModule := broadcast.NewModule()
	gatewayModule := gateway.NewModule()
	apiModule := api.NewModule(cfg)

	// The hub is not exposed via ServiceContainer; wire it manually.
	gatewayModule.SetHub(broadcastModule.GetHub())
	apiModule.SetHub(broadcastModule.GetHub())
	apiModule.SetGateway(gatewayModule)

	// Registration order: independent modules first, then dependents.
	app.Register(roomsModule)     // registry + presence + services
	app.Register(broadcastModule) // WebSocket hub + event consumer
	app.Register(gatewayModule)   // realtime connection handling
	app.Register(apiModule)       // HTTP/WebSocket server

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Room coordinator started!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  GET    /health                        - Health check")
	log.Println("  POST   /api/createRoom                - Create a room")
	log.Println("  POST   /api/joinRoom                  - Join a room")
	log.Println("  GET    /api/connectedUsers/:roomCode  - Room presence list")
	log.Println("  GET    /api/roomMessages/:roomCode    - Room message history")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws):", cfg.Port)
	log.Println("  Inbound events:  associateSocketId, handleSendMessage, typing")
	log.Println("  Outbound events: handleSendMessage, typing, updatedUsers")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
