package web

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-bodyscan/pkg/camera"
	"github.com/teslashibe/go-bodyscan/pkg/hub"
	"github.com/teslashibe/go-bodyscan/pkg/pipeline"
	"github.com/teslashibe/go-bodyscan/pkg/store"
)

// ImageResponse carries a base64-encoded image.
type ImageResponse struct {
	Image string `json:"image"`
}

// StatusResponse is returned when the requested resource is not ready.
type StatusResponse struct {
	Status string `json:"status"`
}

// handleProfile returns the locked profile, or the session status while
// scanning.
func (s *Server) handleProfile(c *fiber.Ctx) error {
	snap := s.scanner.Snapshot()
	if snap.Locked() {
		return c.JSON(snap.Profile)
	}
	return c.JSON(StatusResponse{Status: string(snap.Status)})
}

// handleFrame returns the latest camera frame as base64 JPEG.
func (s *Server) handleFrame(c *fiber.Ctx) error {
	jpeg, ok := s.scanner.LatestFrame()
	if !ok {
		return c.JSON(StatusResponse{Status: "no_frame"})
	}
	return c.JSON(ImageResponse{Image: base64.StdEncoding.EncodeToString(jpeg)})
}

// handleSilhouette returns the lock-frame silhouette as base64 PNG.
func (s *Server) handleSilhouette(c *fiber.Ctx) error {
	png, ok := s.scanner.Silhouette()
	if !ok {
		return c.JSON(StatusResponse{Status: "not_ready"})
	}
	return c.JSON(ImageResponse{Image: base64.StdEncoding.EncodeToString(png)})
}

// handleHealth reports liveness and whether frames are being scanned.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true, "scanning": s.scanner.Running()})
}

// handleSession returns the full session snapshot
func (s *Server) handleSession(c *fiber.Ctx) error {
	return c.JSON(s.scanner.Snapshot())
}

// handleReset discards the current session and starts a new one
func (s *Server) handleReset(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.ResetTimeout)
	defer cancel()

	prev := s.scanner.Snapshot().SessionID
	snap, err := s.scanner.Reset(ctx)
	switch {
	case errors.Is(err, pipeline.ErrNotRunning):
		return fiber.NewError(fiber.StatusServiceUnavailable, "scanner is not running")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "reset timed out")
	case err != nil:
		return err
	}

	s.AddEvent("reset", snap.SessionID, "session reset (previous "+prev+")")
	return c.JSON(snap)
}

// handleStats returns frame counters
func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.scanner.Stats())
}

// handleEvents returns recent scan events
func (s *Server) handleEvents(c *fiber.Ctx) error {
	return c.JSON(s.Events())
}

// handleListProfiles returns archived profiles, newest first
func (s *Server) handleListProfiles(c *fiber.Ctx) error {
	if s.archive == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "profile archive disabled")
	}
	limit := c.QueryInt("limit", store.DefaultListLimit)
	if limit < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be positive")
	}

	profiles, err := s.archive.ListProfiles(c.UserContext(), limit)
	if err != nil {
		s.log.Error("list profiles failed", "error", err)
		return err
	}
	return c.JSON(profiles)
}

// handleGetProfile returns one archived profile
func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	if s.archive == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "profile archive disabled")
	}
	p, err := s.archive.Profile(c.UserContext(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "profile not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// handleProfileSilhouette returns the archived silhouette as image/png
func (s *Server) handleProfileSilhouette(c *fiber.Ctx) error {
	if s.archive == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "profile archive disabled")
	}
	png, err := s.archive.Silhouette(c.UserContext(), c.Params("id"))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "silhouette not found")
	}
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// handleGetCamera returns the current camera settings
func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	if s.camera == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "camera control disabled")
	}
	return c.JSON(s.camera.GetConfigJSON())
}

// handleUpdateCamera applies a partial settings update or a preset
func (s *Server) handleUpdateCamera(c *fiber.Ctx) error {
	if s.camera == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "camera control disabled")
	}
	var params map[string]any
	if err := c.BodyParser(&params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := s.camera.UpdateConfig(params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.AddEvent("info", s.scanner.Snapshot().SessionID, "camera settings updated")
	return c.JSON(s.camera.GetConfigJSON())
}

// handleCameraPresets lists preset names
func (s *Server) handleCameraPresets(c *fiber.Ctx) error {
	return c.JSON(camera.PresetNames())
}

// handleStatusWS streams session snapshots
func (s *Server) handleStatusWS(c *websocket.Conn) {
	hub.Serve(s.statusHub, c)
}

// handleCameraWS streams JPEG frames
func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.Serve(s.cameraHub, c)
}

// handleEventsWS streams scan events
func (s *Server) handleEventsWS(c *websocket.Conn) {
	hub.Serve(s.eventHub, c)
}

var (
	_ Scanner       = (*pipeline.Runner)(nil)
	_ Archive       = (*store.DB)(nil)
	_ CameraControl = (*camera.Manager)(nil)
)
