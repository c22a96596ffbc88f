// Package app wires the camera, detectors, scan pipeline, profile archive
// and web service into one process.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-bodyscan/internal/config"
	"github.com/teslashibe/go-bodyscan/internal/log"
	"github.com/teslashibe/go-bodyscan/pkg/camera"
	"github.com/teslashibe/go-bodyscan/pkg/debug"
	"github.com/teslashibe/go-bodyscan/pkg/pipeline"
	"github.com/teslashibe/go-bodyscan/pkg/scan"
	"github.com/teslashibe/go-bodyscan/pkg/store"
	"github.com/teslashibe/go-bodyscan/pkg/vision"
	"github.com/teslashibe/go-bodyscan/pkg/web"
)

// shutdownTimeout bounds the HTTP drain on exit.
const shutdownTimeout = 5 * time.Second

// App is the scanner application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config *config.Config

	// Capture and detection
	capture   *vision.Capture
	source    *vision.Source
	cameraMgr *camera.Manager

	// Scanning
	runner  *pipeline.Runner
	archive *store.DB

	// Web service
	webServer *web.Server
}

// New creates an application for cfg. Nothing is opened until Init.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Frames = cfg.Debug.Frames

	return &App{config: cfg}, nil
}

// Init opens the archive, camera and models and connects the pipeline to
// the web service. Call this after New and before Run.
func (a *App) Init() error {
	log.Info("starting body scanner",
		"addr", a.config.Server.Addr,
		"store", a.config.Store.Path,
		"frame_debug", debug.Frames,
	)

	archive, err := store.Open(a.config.Store.Path)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	a.archive = archive

	if err := a.initVision(); err != nil {
		return err
	}

	runCfg := pipeline.DefaultConfig()
	runCfg.Scan = a.config.ScanParams()
	encode := vision.SilhouetteEncoder(runCfg.Scan.ForegroundThreshold)

	a.runner, err = pipeline.New(runCfg, a.source, encode, a.archive)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	a.source.SetStatus(a.runner.Snapshot)

	a.initWeb()
	return nil
}

func (a *App) initVision() error {
	capture, err := vision.OpenCapture(a.config.CameraParams())
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	a.capture = capture

	poseCfg := vision.DefaultPoseConfig()
	poseCfg.ModelPath = a.config.Models.Pose
	poseCfg.MinScore = a.config.Models.PoseMinScore
	pose, err := vision.NewPoseDetector(poseCfg)
	if err != nil {
		return fmt.Errorf("pose model: %w", err)
	}

	segCfg := vision.DefaultSegmenterConfig()
	segCfg.ModelPath = a.config.Models.Segmentation
	segmenter, err := vision.NewSegmenter(segCfg)
	if err != nil {
		pose.Close()
		return fmt.Errorf("segmentation model: %w", err)
	}

	a.source = vision.NewSource(capture, pose, segmenter, vision.SourceConfig{
		Annotate:  a.config.Camera.Annotate,
		WaistBias: a.config.Scan.WaistBias,
	})

	a.cameraMgr = camera.NewManager(capture.Config())
	a.cameraMgr.OnConfigChange(capture.Apply)
	return nil
}

func (a *App) initWeb() {
	webCfg := web.DefaultConfig()
	webCfg.Addr = a.config.Server.Addr
	webCfg.StaticDir = a.config.Server.StaticDir
	webCfg.AccessLog = a.config.Server.AccessLog

	a.webServer = web.NewServer(webCfg, a.runner, a.archive)
	a.webServer.SetCamera(a.cameraMgr)

	a.runner.OnSnapshot(a.webServer.PublishSnapshot)
	a.runner.OnFrame(a.webServer.PublishFrame)
	a.runner.OnLock(func(p scan.Profile) {
		a.webServer.AddEvent("lock", p.SessionID, lockMessage(p))
	})
}

// lockMessage summarizes a locked profile for the event feed.
func lockMessage(p scan.Profile) string {
	return fmt.Sprintf("%s (SR %.3f, WR %.3f), confidence %d%%, %.2fs",
		p.BodyShape, p.Ratios.ShoulderHip, p.Ratios.WaistHip, p.Confidence, p.ScanTimeSec)
}

// Run serves HTTP and scans frames until ctx is cancelled or either side
// fails.
func (a *App) Run(ctx context.Context) error {
	if a.runner == nil || a.webServer == nil {
		return errors.New("app: Run before Init")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		if err := a.webServer.Start(); err != nil {
			errCh <- fmt.Errorf("web: %w", err)
		}
	}()

	scanned := make(chan struct{})
	go func() {
		defer close(scanned)
		err := a.runner.Run(ctx)
		switch {
		case errors.Is(err, context.Canceled):
		case err != nil:
			errCh <- fmt.Errorf("pipeline: %w", err)
		default:
			// Camera ended without error; keep serving the archive.
			log.Warn("frame source ended")
		}
	}()
	// Shutdown closes the source, so the runner must be done with it.
	defer func() {
		cancel()
		<-scanned
	}()

	a.webServer.AddEvent("info", a.runner.Snapshot().SessionID, "scanner started")

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops all components. It is safe after a partial
// Init.
func (a *App) Shutdown() {
	log.Info("shutting down")

	if a.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.webServer.Shutdown(ctx); err != nil {
			log.Warn("web shutdown", "error", err)
		}
		cancel()
	}
	if a.source != nil {
		if err := a.source.Close(); err != nil {
			log.Warn("camera close", "error", err)
		}
	} else if a.capture != nil {
		a.capture.Close()
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			log.Warn("archive close", "error", err)
		}
	}
}
