package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var explainCmd = &cobra.Command{
	Use:   "explain <query>",
	Short: "Show the condition tree and compiled matcher for a query",
	Long: `Parses a condition expression without running it and prints the condition
tree and the matcher tree with the chosen strategies.
Example) shisou explain '*(4)*'`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide a query expression")
			os.Exit(1)
		}
		expr := strings.Join(args, "")

		engine := newEngine(resolveConfig())

		astStr, treeStr, err := engine.Explain(expr)
		if err != nil {
			if astStr != "" {
				fmt.Println(astStr)
			}
			logger.Error("Explain failed", zap.String("query", expr), zap.Error(err))
			fmt.Printf("error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("condition:")
		fmt.Println("  " + astStr)
		fmt.Println("matcher:")
		fmt.Println(treeStr)
	},
}
