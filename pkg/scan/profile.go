package scan

import "time"

// State is the session lifecycle phase.
type State string

// Session states. A session moves from Scanning to Locked once.
const (
	Scanning State = "scanning"
	Locked   State = "locked"
)

// Profile is the frozen result of a locked session. Values are never
// modified after the session publishes them.
type Profile struct {
	SessionID     string     `json:"session_id"`
	Status        State      `json:"status"`
	ScanTimeSec   float64    `json:"scan_time_sec"` // Two decimals
	Confidence    int        `json:"confidence"`    // 0-100
	Ratios        Ratios     `json:"ratios"`        // Three decimals
	BodyShape     BodyShape  `json:"body_shape"`
	FitProfile    FitProfile `json:"fit_profile"`
	TryOnReady    bool       `json:"tryon_ready"`
	SilhouetteRef string     `json:"silhouette_ref"` // Key of the silhouette captured at lock
	LockedAt      time.Time  `json:"locked_at"`
}

// Preview is a provisional reading shown while still scanning.
type Preview struct {
	Ratios    Ratios    `json:"ratios"`
	BodyShape BodyShape `json:"body_shape"`
}

// Snapshot is an immutable view of a session for readers.
type Snapshot struct {
	SessionID    string   `json:"session_id"`
	Status       State    `json:"status"`
	StableFrames int      `json:"stable_frames"`
	Samples      int      `json:"samples"`
	WindowSize   int      `json:"window_size"`
	Preview      *Preview `json:"preview,omitempty"`
	Profile      *Profile `json:"profile,omitempty"`
}

// Locked reports whether the snapshot carries a final profile.
func (s Snapshot) Locked() bool {
	return s.Status == Locked && s.Profile != nil
}
