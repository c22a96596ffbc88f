package main

import (
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-bodyscan/internal/config"
	"github.com/teslashibe/go-bodyscan/internal/log"
	"github.com/teslashibe/go-bodyscan/pkg/app"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Scan from the camera and serve results over HTTP",
	Long: `Open the camera and detection models, run the scan pipeline and serve the
session, frames and archived profiles. Log level changes in the config file
apply without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	if err := a.Init(); err != nil {
		return err
	}

	config.Watch(settings, func(c *config.Config, err error) {
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if err := log.Init(c.Log.Level); err != nil {
			log.Warn("log level reload failed", "error", err)
			return
		}
		log.Info("config reloaded", "log_level", c.Log.Level)
	})

	return a.Run(cmd.Context())
}
