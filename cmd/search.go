package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shisou-labs/shisou/formatter"
	"github.com/shisou-labs/shisou/search"
)

var (
	searchJSONOutput bool
	searchSequential bool
	searchOutPath    string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a condition expression over the corpus",
	Long: `Parses a condition expression, compiles it to a matcher and scans every
sentence of every poem. Example) shisou search '<山水>'`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide a query expression")
			os.Exit(1)
		}
		expr := strings.Join(args, "")

		engine := newEngine(resolveConfig())

		var (
			results []search.Result
			err     error
		)
		if searchSequential {
			results, err = engine.QuerySequential(expr)
		} else {
			results, err = engine.Query(expr)
		}
		if err != nil {
			logger.Error("Query failed", zap.String("query", expr), zap.Error(err))
			fmt.Printf("error: %v\n", err)
			os.Exit(1)
		}

		printResults(engine, results)
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSONOutput, "json", false, "Output results in JSON format")
	searchCmd.Flags().BoolVar(&searchSequential, "sequential", false, "Use the single-threaded executor")
	searchCmd.Flags().StringVarP(&searchOutPath, "output", "o", "", "Output path (when using JSON)")
}

func printResults(engine *search.Engine, results []search.Result) {
	if !searchJSONOutput {
		fmt.Println(formatter.FormatResults(results, engine.Corpus()))
		return
	}

	d, err := json.Marshal(results)
	if err != nil {
		logger.Error("Error marshalling results to JSON", zap.Error(err))
		return
	}
	if searchOutPath == "" {
		fmt.Println(string(d))
		return
	}
	f, err := os.Create(searchOutPath)
	if err != nil {
		logger.Error("Error creating JSON output file", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := f.Write(d); err != nil {
		logger.Error("Error writing JSON output file", zap.Error(err))
	}
}
