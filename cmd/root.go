package cmd

import (
	"fmt"
	"os"

	"postcard-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "postcard-sync",
	Short: "Postcard Sync Service",
	Long: `Postcard Sync keeps local postcard records in step with a remote JSON API.
It pulls and pushes cards with their photo lists and stores photo content in S3 storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs RootCmd and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// console format with ISO8601 timestamps reads better in a terminal
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
