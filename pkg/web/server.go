// Package web serves the scanner over HTTP and websockets.
package web

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-bodyscan/internal/log"
	"github.com/teslashibe/go-bodyscan/pkg/hub"
	"github.com/teslashibe/go-bodyscan/pkg/pipeline"
	"github.com/teslashibe/go-bodyscan/pkg/scan"
)

// Scanner is the live scan the server exposes.
type Scanner interface {
	Snapshot() scan.Snapshot
	LatestFrame() ([]byte, bool)
	Silhouette() ([]byte, bool)
	Reset(ctx context.Context) (scan.Snapshot, error)
	Stats() pipeline.Stats
	Running() bool
}

// Archive is read access to stored profiles.
type Archive interface {
	ListProfiles(ctx context.Context, limit int) ([]scan.Profile, error)
	Profile(ctx context.Context, id string) (scan.Profile, error)
	Silhouette(ctx context.Context, id string) ([]byte, error)
}

// CameraControl exposes runtime camera settings. *camera.Manager
// satisfies it.
type CameraControl interface {
	GetConfigJSON() map[string]any
	UpdateConfig(params map[string]any) error
}

// Config configures the server.
type Config struct {
	Addr         string
	StaticDir    string        // Served at / when set
	AccessLog    bool          // Log every request
	ResetTimeout time.Duration // Bound on POST /api/session/reset
	MaxEvents    int           // Events kept for GET /api/events
}

// DefaultConfig returns the standard server settings.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:8000",
		ResetTimeout: 2 * time.Second,
		MaxEvents:    200,
	}
}

// Event is a scan lifecycle entry (lock, reset).
type Event struct {
	Time      string `json:"time"`
	Type      string `json:"type"` // lock, reset, info, error
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// Server is the HTTP service
type Server struct {
	app     *fiber.App
	cfg     Config
	scanner Scanner
	archive Archive
	camera  CameraControl
	log     *slog.Logger

	// Event buffer (last cfg.MaxEvents entries)
	events   []Event
	eventsMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	cameraHub *hub.Hub
	eventHub  *hub.Hub

	cancelHubs context.CancelFunc
}

// NewServer creates the server. archive may be nil, in which case the
// archive routes answer 503.
func NewServer(cfg Config, scanner Scanner, archive Archive) *Server {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = DefaultConfig().MaxEvents
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultConfig().ResetTimeout
	}

	s := &Server{
		cfg:       cfg,
		scanner:   scanner,
		archive:   archive,
		log:       log.Component("web"),
		events:    make([]Event, 0, cfg.MaxEvents),
		statusHub: hub.New("status", hub.WithReplay()),
		cameraHub: hub.New("camera"),
		eventHub:  hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "bodyscan",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	// CORS for browser clients on other origins
	app.Use(cors.New())
	if cfg.AccessLog {
		app.Use(logger.New())
	}

	// Scanner routes
	app.Get("/profile", s.handleProfile)
	app.Get("/frame", s.handleFrame)
	app.Get("/silhouette", s.handleSilhouette)
	app.Get("/healthz", s.handleHealth)

	// API routes
	api := app.Group("/api")
	api.Get("/session", s.handleSession)
	api.Post("/session/reset", s.handleReset)
	api.Get("/stats", s.handleStats)
	api.Get("/events", s.handleEvents)
	api.Get("/profiles", s.handleListProfiles)
	api.Get("/profiles/:id", s.handleGetProfile)
	api.Get("/profiles/:id/silhouette", s.handleProfileSilhouette)
	api.Get("/camera", s.handleGetCamera)
	api.Post("/camera", s.handleUpdateCamera)
	api.Get("/camera/presets", s.handleCameraPresets)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	s.app = app
	return s
}

// SetCamera enables the /api/camera routes.
func (s *Server) SetCamera(c CameraControl) {
	s.camera = c
}

// Start runs the hubs and serves until Shutdown. It blocks.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelHubs = cancel

	go s.statusHub.Run(ctx)
	go s.cameraHub.Run(ctx)
	go s.eventHub.Run(ctx)

	s.log.Info("listening", "addr", s.cfg.Addr)
	if err := s.app.Listen(s.cfg.Addr); err != nil {
		cancel()
		return err
	}
	return nil
}

// Shutdown stops the server and its hubs.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancelHubs != nil {
		s.cancelHubs()
	}
	return s.app.ShutdownWithContext(ctx)
}

// PublishSnapshot pushes a session snapshot to /ws/status clients.
func (s *Server) PublishSnapshot(snap scan.Snapshot) {
	if err := s.statusHub.BroadcastJSON(snap); err != nil {
		s.log.Error("snapshot encode failed", "error", err)
	}
}

// PublishFrame pushes a JPEG frame to /ws/camera clients.
func (s *Server) PublishFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}

// AddEvent records an event and broadcasts it to /ws/events clients.
func (s *Server) AddEvent(eventType, sessionID, message string) {
	e := Event{
		Time:      time.Now().Format("15:04:05"),
		Type:      eventType,
		SessionID: sessionID,
		Message:   message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, e)
	if len(s.events) > s.cfg.MaxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	if err := s.eventHub.BroadcastJSON(e); err != nil {
		s.log.Error("event encode failed", "error", err)
	}
}

// Events returns a copy of the buffered events, oldest first.
func (s *Server) Events() []Event {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	return append([]Event(nil), s.events...)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
