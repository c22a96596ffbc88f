package scan

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-bodyscan/pkg/landmark"
	"github.com/teslashibe/go-bodyscan/pkg/silhouette"
)

func TestSession_LocksAfterStableRun(t *testing.T) {
	s, _ := newTestSession(DefaultConfig())
	b := standingBody()

	for i := 1; i <= 24; i++ {
		out := s.ProcessFrame(b.landmarks(), b.mask())
		require.Equal(t, OutcomeSampled, out, "frame %d", i)
		require.Equal(t, Scanning, s.Snapshot().Status, "frame %d", i)
	}
	assert.Equal(t, 15, s.Snapshot().Samples)
	assert.Equal(t, 24, s.Snapshot().StableFrames)

	out := s.ProcessFrame(b.landmarks(), b.mask())
	require.Equal(t, OutcomeLocked, out)

	snap := s.Snapshot()
	require.True(t, snap.Locked())
	assert.Nil(t, snap.Preview)

	start := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	want := Profile{
		SessionID:   "test-session",
		Status:      Locked,
		ScanTimeSec: 2.4, // 24 frames at 100ms
		Confidence:  100,
		Ratios:      Ratios{ShoulderHip: 0.769, WaistHip: 0.808},
		BodyShape:   Balanced,
		FitProfile: FitProfile{
			TopFit:    TopRegular,
			WaistFit:  WaistDefined,
			BottomFit: BottomFlowy,
		},
		TryOnReady:    true,
		SilhouetteRef: "test-session",
		LockedAt:      start.Add(2400 * time.Millisecond),
	}
	if diff := cmp.Diff(want, *snap.Profile); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_FrozenAfterLock(t *testing.T) {
	s, _ := newTestSession(DefaultConfig())
	b := standingBody()
	for i := 0; i < 25; i++ {
		s.ProcessFrame(b.landmarks(), b.mask())
	}
	locked := s.Snapshot()
	require.True(t, locked.Locked())

	// A wildly different subject must not change anything.
	other := body{shoulderRow: 50, hipRow: 350, shoulderW: 400, waistW: 100, hipW: 150}
	for i := 0; i < 40; i++ {
		assert.Equal(t, OutcomeFrozen, s.ProcessFrame(other.landmarks(), other.mask()))
	}
	assert.Equal(t, OutcomeFrozen, s.ProcessFrame(nil, nil))

	after := s.Snapshot()
	assert.Equal(t, locked, after)
	assert.Same(t, locked.Profile, after.Profile)
}

func TestSession_NeverLocksWithoutFullWindows(t *testing.T) {
	s, _ := newTestSession(DefaultConfig())
	b := standingBody()

	for i := 0; i < 14; i++ {
		s.ProcessFrame(b.landmarks(), b.mask())
	}
	snap := s.Snapshot()
	assert.Equal(t, Scanning, snap.Status)
	assert.Nil(t, snap.Profile)
	assert.Equal(t, 14, snap.Samples)
}

func TestSession_LockGatesAreIndependent(t *testing.T) {
	s, _ := newTestSession(DefaultConfig())
	b := standingBody()
	empty := silhouette.New(testFrameW, testFrameH)

	// 30 stable frames with no silhouette: streak grows, windows stay empty.
	for i := 0; i < 30; i++ {
		assert.Equal(t, OutcomeNoReading, s.ProcessFrame(b.landmarks(), empty))
	}
	snap := s.Snapshot()
	assert.Equal(t, 30, snap.StableFrames)
	assert.Equal(t, 0, snap.Samples)

	// Windows fill on the 15th readable frame and the long streak already
	// satisfies the other gate.
	for i := 1; i < 15; i++ {
		require.Equal(t, OutcomeSampled, s.ProcessFrame(b.landmarks(), b.mask()), "frame %d", i)
	}
	assert.Equal(t, OutcomeLocked, s.ProcessFrame(b.landmarks(), b.mask()))
}

func TestSession_StreakBelowLockFramesBlocksLock(t *testing.T) {
	s, _ := newTestSession(DefaultConfig())
	b := standingBody()

	for i := 0; i < 20; i++ {
		s.ProcessFrame(b.landmarks(), b.mask())
	}
	// Movement resets the streak; windows stay full.
	assert.Equal(t, OutcomeUnstable, s.ProcessFrame(b.shifted(30).landmarks(), b.shifted(30).mask()))
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.StableFrames)
	assert.Equal(t, 15, snap.Samples)

	moved := b.shifted(30)
	for i := 1; i < 25; i++ {
		require.Equal(t, OutcomeSampled, s.ProcessFrame(moved.landmarks(), moved.mask()), "frame %d", i)
	}
	assert.Equal(t, OutcomeLocked, s.ProcessFrame(moved.landmarks(), moved.mask()))
}

func TestSession_MissingLandmarksLeaveStateUntouched(t *testing.T) {
	s, _ := newTestSession(DefaultConfig())
	b := standingBody()

	for i := 0; i < 10; i++ {
		s.ProcessFrame(b.landmarks(), b.mask())
	}
	before := s.Snapshot()

	assert.Equal(t, OutcomeNoSubject, s.ProcessFrame(nil, b.mask()))
	assert.Equal(t, OutcomeNoSubject, s.ProcessFrame(landmark.Set{}, b.mask()))

	partial := b.landmarks()
	delete(partial, landmark.RightHip)
	assert.Equal(t, OutcomeNoSubject, s.ProcessFrame(partial, b.mask()))
	assert.Equal(t, OutcomeNoSubject, s.ProcessFrame(b.landmarks(), nil))

	assert.Equal(t, before, s.Snapshot())

	// The streak continues from where it was.
	s.ProcessFrame(b.landmarks(), b.mask())
	assert.Equal(t, 11, s.Snapshot().StableFrames)
}

func TestSession_NoSubjectDoesNotBridgeMovement(t *testing.T) {
	s, _ := newTestSession(DefaultConfig())
	b := standingBody()

	for i := 0; i < 5; i++ {
		s.ProcessFrame(b.landmarks(), b.mask())
	}
	s.ProcessFrame(nil, nil)

	// The comparison is against the last observed frame, not the gap.
	moved := b.shifted(8)
	assert.Equal(t, OutcomeUnstable, s.ProcessFrame(moved.landmarks(), moved.mask()))
	assert.Equal(t, 0, s.Snapshot().StableFrames)
}

func TestSession_PartialReadingIsAllOrNothing(t *testing.T) {
	s, _ := newTestSession(DefaultConfig())
	b := standingBody()

	s.ProcessFrame(b.landmarks(), b.mask())
	require.Equal(t, 1, s.Snapshot().Samples)

	// Wipe only the waist band: shoulder and hip still read.
	m := b.mask()
	for y := 180; y < 285; y++ {
		m.FillRow(y, 0, testFrameW-1, 0)
	}
	assert.Equal(t, OutcomeNoReading, s.ProcessFrame(b.landmarks(), m))

	assert.Equal(t, 1, s.windows.Shoulder.Len())
	assert.Equal(t, 1, s.windows.Waist.Len())
	assert.Equal(t, 1, s.windows.Hip.Len())
	assert.Equal(t, 2, s.Snapshot().StableFrames)
}

func TestSession_UnstableFrameIsNotSampled(t *testing.T) {
	s, _ := newTestSession(DefaultConfig())
	b := standingBody()

	s.ProcessFrame(b.landmarks(), b.mask())
	s.ProcessFrame(b.shifted(7).landmarks(), b.shifted(7).mask())
	require.Equal(t, 2, s.Snapshot().Samples)

	assert.Equal(t, OutcomeUnstable, s.ProcessFrame(b.shifted(15).landmarks(), b.shifted(15).mask()))
	assert.Equal(t, 2, s.Snapshot().Samples)
	assert.Equal(t, 0, s.Snapshot().StableFrames)
}

func TestSession_Preview(t *testing.T) {
	s, _ := newTestSession(DefaultConfig())
	b := standingBody()

	for i := 0; i < 5; i++ {
		s.ProcessFrame(b.landmarks(), b.mask())
	}
	assert.Nil(t, s.Snapshot().Preview, "five samples is not more than five")

	s.ProcessFrame(b.landmarks(), b.mask())
	p := s.Snapshot().Preview
	require.NotNil(t, p)
	assert.InDelta(t, 0.769, p.Ratios.ShoulderHip, 1e-9)
	assert.InDelta(t, 0.808, p.Ratios.WaistHip, 1e-9)
	assert.Equal(t, Balanced, p.BodyShape)
	assert.Equal(t, Scanning, s.Snapshot().Status)
}

func TestSession_ScanClockStartsAtFirstDetection(t *testing.T) {
	s, clock := newTestSession(DefaultConfig())
	b := standingBody()

	// Frames with nobody in view do not start the clock.
	for i := 0; i < 10; i++ {
		s.ProcessFrame(nil, b.mask())
	}
	clock.t = clock.t.Add(time.Minute)

	for i := 0; i < 25; i++ {
		s.ProcessFrame(b.landmarks(), b.mask())
	}
	require.True(t, s.Snapshot().Locked())
	assert.InDelta(t, 2.4, s.Snapshot().Profile.ScanTimeSec, 1e-9)
}

func TestSession_QuickConfig(t *testing.T) {
	cfg := QuickConfig()
	s, _ := newTestSession(cfg)
	b := standingBody()

	var out Outcome
	n := 0
	for out != OutcomeLocked && n < 100 {
		out = s.ProcessFrame(b.landmarks(), b.mask())
		n++
	}
	assert.Equal(t, cfg.LockFrames, n)
}

func TestNewSession_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowSize = 0
	_, err := NewSession(cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "WindowSize", ce.Field)
}

func TestNewSession_RandomID(t *testing.T) {
	a, err := NewSession(DefaultConfig())
	require.NoError(t, err)
	b, err := NewSession(DefaultConfig())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.ID(), a.Snapshot().SessionID)
	assert.Equal(t, Scanning, a.Snapshot().Status)
}

func TestSession_ReadersNeverSeePartialProfile(t *testing.T) {
	s, err := NewSession(DefaultConfig())
	require.NoError(t, err)
	b := standingBody()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Snapshot()
				switch snap.Status {
				case Scanning:
					if snap.Profile != nil {
						t.Error("scanning snapshot carries a profile")
						return
					}
				case Locked:
					p := snap.Profile
					if p == nil || !p.TryOnReady || p.BodyShape == "" || p.Ratios.ShoulderHip == 0 {
						t.Errorf("incomplete locked profile: %+v", p)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 40; i++ {
		s.ProcessFrame(b.landmarks(), b.mask())
	}
	close(stop)
	wg.Wait()

	assert.True(t, s.Snapshot().Locked())
}

func TestOutcome_String(t *testing.T) {
	for o := OutcomeNoSubject; o <= OutcomeFrozen; o++ {
		assert.NotEqual(t, "unknown", o.String())
	}
	assert.Equal(t, "unknown", Outcome(99).String())
	assert.False(t, OutcomeNoSubject.Changed())
	assert.False(t, OutcomeFrozen.Changed())
	assert.True(t, OutcomeUnstable.Changed())
	assert.True(t, OutcomeLocked.Changed())
}
