package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shisou-labs/shisou/search"
)

// initCmd: shisou init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new engine configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = ".shisou.yaml"
		}
		if err := search.WriteDefaultConfig(path); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		fmt.Printf("Configuration file created/updated: %s\n", path)
	},
}
