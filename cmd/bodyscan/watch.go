package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-bodyscan/pkg/scan"
	"github.com/teslashibe/go-bodyscan/pkg/web"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a running scanner's session status",
	Long: `Connect to a running scanner's /ws/status websocket and print each session
update. Exits once a profile locks unless --follow is set.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchFollow bool

func init() {
	watchCmd.Flags().String("addr", "", "Scanner address (overrides server.addr)")
	watchCmd.Flags().BoolVarP(&watchFollow, "follow", "f", false, "Keep watching across resets")
}

func runWatch(cmd *cobra.Command, args []string) error {
	url := statusURL(cfg.Server.Addr)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "👀 Watching %s (Ctrl+C to exit)\n", url)

	err := web.WatchStatus(cmd.Context(), url, func(s scan.Snapshot) bool {
		fmt.Fprintln(out, formatSnapshot(s))
		return watchFollow || !s.Locked()
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// statusURL turns a listen address into the status websocket URL.
func statusURL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return strings.TrimSuffix(addr, "/") + "/ws/status"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "ws://" + addr + "/ws/status"
}

func formatSnapshot(s scan.Snapshot) string {
	if s.Locked() {
		p := s.Profile
		return fmt.Sprintf("🔒 %s locked: %s  SR %.3f  WR %.3f  confidence %d%%  top %s, waist %s, bottom %s",
			short(s.SessionID), p.BodyShape, p.Ratios.ShoulderHip, p.Ratios.WaistHip, p.Confidence,
			p.FitProfile.TopFit, p.FitProfile.WaistFit, p.FitProfile.BottomFit)
	}
	line := fmt.Sprintf("🔍 %s scanning: stable %d  samples %d/%d",
		short(s.SessionID), s.StableFrames, s.Samples, s.WindowSize)
	if p := s.Preview; p != nil {
		line += fmt.Sprintf("  SR %.2f  WR %.2f  %s", p.Ratios.ShoulderHip, p.Ratios.WaistHip, p.BodyShape)
	}
	return line
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
