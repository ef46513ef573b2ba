package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/itchan-dev/blogfeed/shared/config"
	"github.com/itchan-dev/blogfeed/shared/logger"
	"github.com/spf13/cobra"
)

var (
	configFolder string
	cfg          *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "blogfeed [command] [flags]",
	Short:         "blogfeed: a live post feed on top of a managed backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFolder)
		if err != nil {
			return err
		}
		cfg = loaded
		// only the web page logs to stdout, the terminal commands own it
		if cmd.Name() == serveCmd.Name() {
			logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)
		} else {
			logger.InitializeTo(os.Stderr, cfg.Public.LogLevel, cfg.Public.LogJSON)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Log.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
