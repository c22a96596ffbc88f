// Package pipeline runs the single producer that feeds camera frames into a
// scan session.
//
// Exactly one goroutine (Run) mutates the session. HTTP handlers and
// websocket pushers read published snapshots and the latest encoded frame
// concurrently. Session resets are queued to the producer so they never
// interleave with a frame update.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-bodyscan/internal/log"
	"github.com/teslashibe/go-bodyscan/pkg/debug"
	"github.com/teslashibe/go-bodyscan/pkg/scan"
)

// Config holds producer settings.
type Config struct {
	Scan scan.Config

	// MaxConsecutiveErrors stops Run after this many source errors in a row.
	MaxConsecutiveErrors int

	// ErrorBackoff is the pause after a failed Next.
	ErrorBackoff time.Duration

	// ArchiveTimeout bounds a single profile save.
	ArchiveTimeout time.Duration
}

// DefaultConfig returns producer defaults around the standard scan tuning.
func DefaultConfig() Config {
	return Config{
		Scan:                 scan.DefaultConfig(),
		MaxConsecutiveErrors: 30,
		ErrorBackoff:         50 * time.Millisecond,
		ArchiveTimeout:       5 * time.Second,
	}
}

// Stats counts frames by outcome since the runner was created.
type Stats struct {
	Frames    uint64 `json:"frames"`
	NoSubject uint64 `json:"no_subject"`
	Unstable  uint64 `json:"unstable"`
	NoReading uint64 `json:"no_reading"`
	Sampled   uint64 `json:"sampled"`
	Locks     uint64 `json:"locks"`
	Resets    uint64 `json:"resets"`
	Errors    uint64 `json:"errors"`
}

type resetRequest struct {
	reply chan scan.Snapshot
}

// silhouetteImage is the encoded silhouette captured at a session's lock.
type silhouetteImage struct {
	sessionID string
	data      []byte
}

// Runner owns the scan session and the frame source.
type Runner struct {
	cfg     Config
	src     Source
	encode  SilhouetteEncoder
	archive Archive

	session atomic.Pointer[scan.Session]
	running atomic.Bool
	resets  chan resetRequest

	// Latest frame buffer
	frameMu     sync.RWMutex
	latestFrame []byte

	silhouette atomic.Pointer[silhouetteImage]

	// Callbacks, set before Run
	onSnapshot func(scan.Snapshot)
	onFrame    func(jpeg []byte)
	onLock     func(scan.Profile)

	stats struct {
		frames, noSubject, unstable, noReading atomic.Uint64
		sampled, locks, resets, errors         atomic.Uint64
	}
}

// New creates a runner with a fresh scanning session. encode renders the
// lock-frame silhouette; archive may be nil.
func New(cfg Config, src Source, encode SilhouetteEncoder, archive Archive) (*Runner, error) {
	if src == nil {
		return nil, fmt.Errorf("pipeline: nil source")
	}
	if cfg.MaxConsecutiveErrors < 1 {
		cfg.MaxConsecutiveErrors = 1
	}
	if cfg.ArchiveTimeout <= 0 {
		cfg.ArchiveTimeout = DefaultConfig().ArchiveTimeout
	}
	s, err := scan.NewSession(cfg.Scan)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:     cfg,
		src:     src,
		encode:  encode,
		archive: archive,
		resets:  make(chan resetRequest),
	}
	r.session.Store(s)
	return r, nil
}

// OnSnapshot registers a callback for every state-changing frame, lock and
// reset. Called from the producer goroutine; it must not block.
func (r *Runner) OnSnapshot(fn func(scan.Snapshot)) { r.onSnapshot = fn }

// OnFrame registers a callback receiving every encoded frame.
func (r *Runner) OnFrame(fn func(jpeg []byte)) { r.onFrame = fn }

// OnLock registers a callback fired once per session when it locks.
func (r *Runner) OnLock(fn func(scan.Profile)) { r.onLock = fn }

// Snapshot returns the current session snapshot.
func (r *Runner) Snapshot() scan.Snapshot {
	return r.session.Load().Snapshot()
}

// Running reports whether Run is active.
func (r *Runner) Running() bool { return r.running.Load() }

// LatestFrame returns a copy of the most recent encoded frame.
func (r *Runner) LatestFrame() ([]byte, bool) {
	r.frameMu.RLock()
	defer r.frameMu.RUnlock()
	if r.latestFrame == nil {
		return nil, false
	}
	out := make([]byte, len(r.latestFrame))
	copy(out, r.latestFrame)
	return out, true
}

// Silhouette returns the image captured when the current session locked.
// It reports false while scanning and after a reset.
func (r *Runner) Silhouette() ([]byte, bool) {
	img := r.silhouette.Load()
	if img == nil || img.sessionID != r.session.Load().ID() {
		return nil, false
	}
	return img.data, true
}

// Stats returns frame counters.
func (r *Runner) Stats() Stats {
	return Stats{
		Frames:    r.stats.frames.Load(),
		NoSubject: r.stats.noSubject.Load(),
		Unstable:  r.stats.unstable.Load(),
		NoReading: r.stats.noReading.Load(),
		Sampled:   r.stats.sampled.Load(),
		Locks:     r.stats.locks.Load(),
		Resets:    r.stats.resets.Load(),
		Errors:    r.stats.errors.Load(),
	}
}

// Reset asks the producer to discard the current session and start a new
// one. It returns the new session's first snapshot.
func (r *Runner) Reset(ctx context.Context) (scan.Snapshot, error) {
	if !r.running.Load() {
		return scan.Snapshot{}, ErrNotRunning
	}
	req := resetRequest{reply: make(chan scan.Snapshot, 1)}
	select {
	case r.resets <- req:
	case <-ctx.Done():
		return scan.Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-req.reply:
		return snap, nil
	case <-ctx.Done():
		return scan.Snapshot{}, ctx.Err()
	}
}

// Run pulls frames until ctx is done or the source is exhausted. It returns
// nil when the source runs out, ctx.Err() on cancellation, and an error
// after MaxConsecutiveErrors failed reads. The source must honor ctx in
// Next for Run to return promptly on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer r.running.Store(false)

	frames := make(chan Frame)
	errs := make(chan error, 1)
	pulled := make(chan struct{})
	go func() {
		defer close(pulled)
		r.pull(ctx, frames, errs)
	}()
	// The source is not touched once Run returns.
	defer func() { <-pulled }()

	log.Info("pipeline started", "session", r.session.Load().ID())
	defer log.Info("pipeline stopped", "frames", r.stats.frames.Load())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-r.resets:
			req.reply <- r.reset()
		case f := <-frames:
			r.process(ctx, f)
		case err := <-errs:
			if errors.Is(err, ErrSourceExhausted) || errors.Is(err, io.EOF) {
				log.Info("source exhausted")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// pull reads the source on its own goroutine so resets are served while a
// read is blocked. It sends at most one terminal error.
func (r *Runner) pull(ctx context.Context, frames chan<- Frame, errs chan<- error) {
	failures := 0
	for {
		f, err := r.src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrSourceExhausted) || errors.Is(err, io.EOF) {
				errs <- err
				return
			}
			failures++
			r.stats.errors.Add(1)
			log.Warn("frame read failed", "error", err, "consecutive", failures)
			if failures >= r.cfg.MaxConsecutiveErrors {
				errs <- fmt.Errorf("pipeline: %d consecutive source errors: %w", failures, err)
				return
			}
			select {
			case <-time.After(r.cfg.ErrorBackoff):
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
			continue
		}
		failures = 0

		select {
		case frames <- f:
		case <-ctx.Done():
			errs <- ctx.Err()
			return
		}
	}
}

func (r *Runner) process(ctx context.Context, f Frame) {
	r.stats.frames.Add(1)

	if f.JPEG != nil {
		r.frameMu.Lock()
		r.latestFrame = f.JPEG
		r.frameMu.Unlock()
		if r.onFrame != nil {
			r.onFrame(f.JPEG)
		}
	}

	s := r.session.Load()
	out := s.ProcessFrame(f.Landmarks, f.Mask)
	debug.Frame("frame processed", "seq", f.Seq, "outcome", out.String())

	switch out {
	case scan.OutcomeNoSubject:
		r.stats.noSubject.Add(1)
	case scan.OutcomeUnstable:
		r.stats.unstable.Add(1)
	case scan.OutcomeNoReading:
		r.stats.noReading.Add(1)
	case scan.OutcomeSampled:
		r.stats.sampled.Add(1)
	case scan.OutcomeLocked:
		r.stats.locks.Add(1)
		r.locked(ctx, s, f)
	}

	if out.Changed() && r.onSnapshot != nil {
		r.onSnapshot(s.Snapshot())
	}
}

func (r *Runner) locked(ctx context.Context, s *scan.Session, f Frame) {
	snap := s.Snapshot()
	profile := *snap.Profile

	var img []byte
	if r.encode != nil {
		data, err := r.encode(f.Mask)
		if err != nil {
			log.Error("silhouette encode failed", "session", s.ID(), "error", err)
		} else {
			img = data
			r.silhouette.Store(&silhouetteImage{sessionID: s.ID(), data: data})
		}
	}

	log.Info("scan locked",
		"session", profile.SessionID,
		"shape", profile.BodyShape,
		"confidence", profile.Confidence,
		"shoulder_hip", profile.Ratios.ShoulderHip,
		"waist_hip", profile.Ratios.WaistHip,
		"scan_time_sec", profile.ScanTimeSec,
	)

	if r.archive != nil {
		saveCtx, cancel := context.WithTimeout(ctx, r.cfg.ArchiveTimeout)
		if err := r.archive.SaveProfile(saveCtx, profile, img); err != nil {
			log.Error("profile archive failed", "session", profile.SessionID, "error", err)
		}
		cancel()
	}

	if r.onLock != nil {
		r.onLock(profile)
	}
}

func (r *Runner) reset() scan.Snapshot {
	s, err := scan.NewSession(r.cfg.Scan)
	if err != nil {
		// Config was validated in New.
		log.Error("session reset failed", "error", err)
		return r.Snapshot()
	}
	prev := r.session.Swap(s)
	r.stats.resets.Add(1)
	log.Info("session reset", "previous", prev.ID(), "session", s.ID())

	snap := s.Snapshot()
	if r.onSnapshot != nil {
		r.onSnapshot(snap)
	}
	return snap
}
