package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-bodyscan/pkg/camera"
	"github.com/teslashibe/go-bodyscan/pkg/scan"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8000", cfg.Server.Addr)
	assert.Equal(t, 640, cfg.Camera.Width)
	assert.Equal(t, 480, cfg.Camera.Height)
	assert.True(t, cfg.Camera.Mirror)
	assert.Equal(t, 0.6, cfg.Models.PoseMinScore)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Debug.Frames)
	assert.Equal(t, scan.DefaultConfig(), cfg.ScanParams())
	assert.Equal(t, camera.DefaultConfig(), cfg.CameraParams())
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "bodyscan.toml", `
[server]
addr = ":9090"

[camera]
device = 2
mirror = false

[scan]
window_size = 8
lock_frames = 12
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Camera.Device)
	assert.False(t, cfg.Camera.Mirror)

	sc := cfg.ScanParams()
	assert.Equal(t, 8, sc.WindowSize)
	assert.Equal(t, 12, sc.LockFrames)
	assert.Equal(t, 8, sc.StabilityThreshold, "unset keys keep defaults")
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bodyscan.yaml"), []byte("store:\n  path: /tmp/scans.db\n"), 0o644))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/scans.db", cfg.Store.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "bodyscan.json", `{"scan": {"lock_frames": 40}, "log": {"level": "warn"}}`)
	t.Setenv("BODYSCAN_SCAN_LOCK_FRAMES", "30")
	t.Setenv("BODYSCAN_DEBUG_FRAMES", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Scan.LockFrames)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Debug.Frames)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad log level", map[string]string{"BODYSCAN_LOG_LEVEL": "loud"}},
		{"zero window", map[string]string{"BODYSCAN_SCAN_WINDOW_SIZE": "0"}},
		{"negative fps", map[string]string{"BODYSCAN_CAMERA_FPS": "-1"}},
		{"pose score above one", map[string]string{"BODYSCAN_MODELS_POSE_MIN_SCORE": "1.5"}},
		{"zero quality", map[string]string{"BODYSCAN_CAMERA_QUALITY": "0"}},
		{"zoom below one", map[string]string{"BODYSCAN_CAMERA_ZOOM": "0.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestLoad_InvalidScanWrapsSentinel(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BODYSCAN_SCAN_WAIST_BIAS", "2")

	_, err := Load("")
	require.ErrorIs(t, err, scan.ErrInvalidConfig)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
