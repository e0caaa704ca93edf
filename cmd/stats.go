package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shisou-labs/shisou/formatter"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and alphabet statistics",
	Run: func(cmd *cobra.Command, args []string) {
		engine := newEngine(resolveConfig())
		fmt.Println(formatter.FormatStats(engine.Stats()))
	},
}
