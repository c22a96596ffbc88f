// Package scan turns per-frame landmarks and silhouette masks into a locked
// body-shape profile.
//
// A Session is driven by exactly one producer calling ProcessFrame in frame
// order. Any number of readers may call Snapshot concurrently; they always
// see either a scanning view or the complete locked profile.
package scan

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-bodyscan/pkg/debug"
	"github.com/teslashibe/go-bodyscan/pkg/landmark"
	"github.com/teslashibe/go-bodyscan/pkg/silhouette"
)

// Outcome describes what one ProcessFrame call did.
type Outcome int

const (
	// OutcomeNoSubject means no usable landmarks or mask; nothing changed.
	OutcomeNoSubject Outcome = iota
	// OutcomeUnstable means the subject moved; the streak was reset.
	OutcomeUnstable
	// OutcomeNoReading means the frame was stable but an anchor row had too
	// little silhouette; the windows were not touched.
	OutcomeNoReading
	// OutcomeSampled means all three widths were appended.
	OutcomeSampled
	// OutcomeLocked means this frame locked the session.
	OutcomeLocked
	// OutcomeFrozen means the session was already locked; nothing changed.
	OutcomeFrozen
)

// String returns a short label for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeNoSubject:
		return "no_subject"
	case OutcomeUnstable:
		return "unstable"
	case OutcomeNoReading:
		return "no_reading"
	case OutcomeSampled:
		return "sampled"
	case OutcomeLocked:
		return "locked"
	case OutcomeFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Changed reports whether the outcome mutated session state.
func (o Outcome) Changed() bool {
	return o != OutcomeNoSubject && o != OutcomeFrozen
}

// Option customizes a Session.
type Option func(*Session)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID sets the session id instead of a random UUID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session is one scan, from first detection to lock.
type Session struct {
	cfg     Config
	id      string
	now     func() time.Time
	sampler silhouette.Sampler

	// Producer-owned state. Only ProcessFrame touches these.
	stability *Stability
	windows   Windows
	started   time.Time
	state     State

	snap atomic.Pointer[Snapshot]
}

// NewSession creates a session in the scanning state.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:       cfg,
		id:        uuid.NewString(),
		now:       time.Now,
		sampler:   cfg.sampler(),
		stability: NewStability(cfg.StabilityThreshold),
		windows:   NewWindows(cfg.WindowSize),
		state:     Scanning,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(s.buildSnapshot(nil))
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// Snapshot returns the latest published view. Safe for concurrent use.
func (s *Session) Snapshot() Snapshot {
	return *s.snap.Load()
}

// ProcessFrame advances the session by one frame. It must be called from a
// single goroutine, in frame order. Per-frame problems never surface as
// errors; they are reported through the returned Outcome and leave the
// session in a consistent state.
//
// The mask height is taken as the frame height when converting normalized
// landmarks to rows.
func (s *Session) ProcessFrame(set landmark.Set, mask *silhouette.Mask) Outcome {
	if s.state == Locked {
		return OutcomeFrozen
	}
	if set.Empty() || mask.Validate() != nil {
		return OutcomeNoSubject
	}
	anchors, ok := AnchorsFrom(set, mask.Height, s.cfg.WaistBias)
	if !ok {
		return OutcomeNoSubject
	}

	now := s.now()
	if s.started.IsZero() {
		s.started = now
	}

	outcome := OutcomeUnstable
	if s.stability.Observe(anchors.Center) {
		widths, ok := MeasureWidths(s.sampler, mask, anchors)
		if ok {
			s.windows.Push(widths)
			outcome = OutcomeSampled
		} else {
			outcome = OutcomeNoReading
		}
		debug.Frame("scan frame",
			"session", s.id,
			"anchors", anchors,
			"widths", widths,
			"outcome", outcome.String(),
			"streak", s.stability.Streak(),
			"samples", s.windows.Len())
	} else {
		debug.Frame("scan frame unstable",
			"session", s.id,
			"center", anchors.Center)
	}

	var profile *Profile
	if s.lockReady() {
		profile = s.buildProfile(now)
		if profile != nil {
			s.state = Locked
			outcome = OutcomeLocked
		}
	}

	s.snap.Store(s.buildSnapshot(profile))
	return outcome
}

// lockReady checks both lock gates. They are independent: windows fill only
// on stable frames, but a streak can also exceed the window size.
func (s *Session) lockReady() bool {
	return s.stability.Streak() >= s.cfg.LockFrames && s.windows.Full()
}

// buildProfile assembles the full locked profile before anything is
// published.
func (s *Session) buildProfile(now time.Time) *Profile {
	r, ok := ComputeRatios(s.windows)
	if !ok {
		return nil
	}
	return &Profile{
		SessionID:     s.id,
		Status:        Locked,
		ScanTimeSec:   roundTo(now.Sub(s.started).Seconds(), 2),
		Confidence:    Confidence(s.cfg.PreviewMinSamples, s.windows.All()...),
		Ratios:        r.Rounded(),
		BodyShape:     Classify(r.ShoulderHip, r.WaistHip),
		FitProfile:    Fit(r.ShoulderHip, r.WaistHip),
		TryOnReady:    true,
		SilhouetteRef: s.id,
		LockedAt:      now,
	}
}

func (s *Session) buildSnapshot(profile *Profile) *Snapshot {
	snap := &Snapshot{
		SessionID:    s.id,
		Status:       s.state,
		StableFrames: s.stability.Streak(),
		Samples:      s.windows.Len(),
		WindowSize:   s.cfg.WindowSize,
		Profile:      profile,
	}
	if profile == nil && s.windows.Len() > s.cfg.PreviewMinSamples {
		if r, ok := ComputeRatios(s.windows); ok {
			snap.Preview = &Preview{
				Ratios:    r.Rounded(),
				BodyShape: Classify(r.ShoulderHip, r.WaistHip),
			}
		}
	}
	return snap
}
