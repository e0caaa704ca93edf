package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shisou-labs/shisou/formatter"
)

var coveredCmd = &cobra.Command{
	Use:   "covered <charset>",
	Short: "Find sentences written entirely with the given characters",
	Long: `Scans the corpus for sentences whose every character belongs to the given
set and prints the first such sentence of each poem.
Example) shisou covered 山水日月`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide a character set")
			os.Exit(1)
		}
		charset := strings.Join(args, "")

		engine := newEngine(resolveConfig())
		fmt.Println(formatter.FormatCovered(engine.Covered(charset)))
	},
}
