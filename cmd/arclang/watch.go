package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mbaroudi/arclang-sub001/internal/cli/config"
	"github.com/Mbaroudi/arclang-sub001/internal/cli/ui"
	"github.com/Mbaroudi/arclang-sub001/internal/watch"
)

var watchPort int

func init() {
	watchCmd.Flags().IntVar(&watchPort, "port", 3035, "Port for the reload websocket endpoint")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild incrementally whenever a model file changes",
	Long: `Watch the source directory and run an incremental pass on every change.
Connected editors are notified over the /reload websocket endpoint when a
pass starts, succeeds, or fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		engineCfg, err := cfg.EngineConfig()
		if err != nil {
			return err
		}

		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()

		session, err := watch.NewSession(watch.SessionConfig{
			Root:   cfg.SourceDir,
			Port:   watchPort,
			Engine: engineCfg,
		}, logger)
		if err != nil {
			return err
		}

		if err := session.Start(); err != nil {
			return err
		}

		ui.Success(os.Stdout, "watching %s/ (reload on ws://localhost:%d/reload)", cfg.SourceDir, watchPort)
		ui.Detail(os.Stdout, "press Ctrl+C to stop")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		return session.Stop()
	},
}
