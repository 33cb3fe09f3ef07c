package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"quickpoll/internal/api"
	"quickpoll/internal/config"
	"quickpoll/internal/live"
	"quickpoll/internal/poll"
	"quickpoll/internal/router"
	"quickpoll/internal/store"
	"quickpoll/internal/websocket"
)

// Application is the explicitly owned context holding every component; there
// are no ambient singletons. Initialization order: open store, load
// persisted rooms (malformed data aborts startup), ensure the demo room,
// wire the live layer, serve.
type Application struct {
	config      *config.Config
	store       *store.Manager
	suite       *poll.Suite
	registry    *live.Registry
	broadcaster *live.Broadcaster
	eventRouter *router.Router
	httpServer  *http.Server

	cleanupStop chan struct{}
}

// NewApplication builds and wires all components.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	manager, err := store.NewManager(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	suite := poll.NewSuite()
	rooms, err := manager.LoadRooms(context.Background())
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	for _, room := range rooms {
		suite.AddExistingRoom(room)
	}
	log.Printf("Loaded %d rooms", len(rooms))

	if cfg.SeedDemoRoom && !suite.HasRoom("demo") {
		room, err := seedDemoRoom(suite)
		if err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("failed to seed demo room: %w", err)
		}
		if err := manager.UpsertRoom(context.Background(), room); err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("failed to persist demo room: %w", err)
		}
		log.Printf("Seeded demo room")
	}

	registry := live.NewRegistry()
	broadcaster := live.NewBroadcaster(registry, suite)
	eventRouter := router.NewRouter(suite, manager, registry, broadcaster, cfg.Teachers)
	wsHandler := websocket.NewHandler(eventRouter, cfg.WebSocket)
	apiServer := api.NewServer(suite, registry, manager)

	mux := http.NewServeMux()
	mux.Handle("/health", apiServer)
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:      cfg,
		store:       manager,
		suite:       suite,
		registry:    registry,
		broadcaster: broadcaster,
		eventRouter: eventRouter,
		httpServer:  httpServer,
		cleanupStop: make(chan struct{}),
	}, nil
}

// seedDemoRoom creates the demonstration room every fresh deployment gets.
func seedDemoRoom(suite *poll.Suite) (*poll.Room, error) {
	room, err := suite.AddRoom("demo", "Demonstration room", "system",
		"This is what a room description can look like")
	if err != nil {
		return nil, err
	}

	single := poll.NewChoiceWidget("Pick an option in a single-choice widget", false, []*poll.Choice{
		poll.NewChoice("Option 1"),
		poll.NewChoice("Option 2"),
	})
	single.SetDescription("An optional question description")
	single.SetVisible(true)
	room.AddWidget(single)

	text := poll.NewTextWidget("Anything you want to tell us through a text input?")
	text.SetDescription("Feel free to be honest in this optional question description")
	text.SetVisible(true)
	room.AddWidget(text)

	multi := poll.NewChoiceWidget("Pick options in a multiple-choice widget", true, []*poll.Choice{
		poll.NewChoice("Option 1"),
		poll.NewChoice("Option 2"),
		poll.NewChoice("Option 3"),
	})
	multi.SetVisible(true)
	room.AddWidget(multi)

	return room, nil
}

// Start begins serving and launches the rate-limiter cleanup ticker.
func (app *Application) Start(ctx context.Context) error {
	log.Printf("Starting quickpoll on %s", app.httpServer.Addr)

	go app.cleanupLoop()

	serverErrCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-time.After(100 * time.Millisecond):
		log.Printf("quickpoll started")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (app *Application) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			app.eventRouter.Limiter().Cleanup()
		case <-app.cleanupStop:
			return
		}
	}
}

// Stop shuts down in reverse dependency order: HTTP first, store last.
func (app *Application) Stop(ctx context.Context) error {
	log.Printf("Shutting down quickpoll")

	if err := app.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	close(app.cleanupStop)
	if err := app.store.Close(); err != nil {
		log.Printf("Store shutdown error: %v", err)
	}

	log.Printf("quickpoll shutdown complete")
	return nil
}

// Addr returns the address the HTTP server binds.
func (app *Application) Addr() string {
	return app.httpServer.Addr
}
