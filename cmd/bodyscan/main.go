// bodyscan - live body-shape scanner
//
// Samples a person's silhouette from a camera, waits for a steady stance,
// and locks a shape profile that is served over HTTP and archived.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teslashibe/go-bodyscan/internal/config"
	"github.com/teslashibe/go-bodyscan/internal/log"
)

var (
	cfgFile string

	// Loaded in PersistentPreRunE for every subcommand.
	cfg      *config.Config
	settings *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "bodyscan",
	Short: "Live body-shape scanner",
	Long: `bodyscan samples a person's silhouette at shoulder, waist and hip height,
locks a body-shape profile once the subject has stood still long enough, and
serves it over HTTP and websockets.

Settings come from bodyscan.toml/.yaml/.json in the working directory (or
--config), then BODYSCAN_* environment variables, then flags.

Examples:
  bodyscan serve                    # Scan from camera 0, serve on 127.0.0.1:8000
  bodyscan serve --addr :8080       # Listen on all interfaces
  bodyscan profiles list            # Show archived profiles
  bodyscan watch                    # Follow a running scanner's status`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.New(cfgFile)
		if err != nil {
			return err
		}
		for key, name := range map[string]string{
			"log.level":    "log-level",
			"debug.frames": "debug-frames",
			"server.addr":  "addr",
		} {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return err
				}
			}
		}

		c, err := config.Decode(v)
		if err != nil {
			return err
		}
		if err := log.Init(c.Log.Level); err != nil {
			return err
		}
		if f := v.ConfigFileUsed(); f != "" {
			log.Debug("config loaded", "file", f)
		}
		cfg, settings = c, v
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default ./bodyscan.{toml,yaml,json})")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("debug-frames", false, "Log per-frame scan traces")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
