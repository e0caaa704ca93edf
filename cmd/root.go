package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shisou-labs/shisou/search"
)

var (
	cfgFile    string
	hanziPath  string
	poetryPath string
	workers    int
	quiet      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "shisou [query]",
	Short:            "shisou - a condition-expression search engine over classical Chinese poetry",
	TraverseChildren: true, // Prioritize subcommands
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'shisou' is entered
			_ = cmd.Help()
			return
		}
		// Format: shisou <query> => behaves like the search subcommand
		searchCmd.Run(searchCmd, args)
	},
}

func Execute() error {
	defer func() {
		_ = logger.Sync()
	}()
	return rootCmd.Execute()
}

func init() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error initializing logger: %v\n", err)
		logger = zap.NewNop()
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&hanziPath, "hanzi", "", "Path to the hanzi knowledge JSON")
	rootCmd.PersistentFlags().StringVar(&poetryPath, "poetry", "", "Path to the poetry CSV")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Worker count for batch matching (0 = one per CPU)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(coveredCmd)
	rootCmd.AddCommand(statsCmd)
}

// resolveConfig merges the configuration file, if any, with command flags;
// flags win.
func resolveConfig() search.Config {
	config := search.DefaultConfig()
	if cfgFile != "" {
		loaded, err := search.LoadConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to read configuration", zap.String("path", cfgFile), zap.Error(err))
		}
		config = loaded
	}
	if hanziPath != "" {
		config.Hanzi = hanziPath
	}
	if poetryPath != "" {
		config.Poetry = poetryPath
	}
	if workers > 0 {
		config.Workers = workers
	}
	return config
}

// newEngine builds a fully loaded engine from the resolved configuration.
func newEngine(config search.Config) *search.Engine {
	engine := search.New(
		search.WithLogger(logger),
		search.WithWorkers(config.Workers),
		search.WithProgress(!quiet),
	)
	if _, err := engine.LoadHanzi(config.Hanzi); err != nil {
		logger.Fatal("Failed to load hanzi table", zap.Error(err))
	}
	if _, err := engine.LoadPoetry(config.Poetry); err != nil {
		logger.Fatal("Failed to load poetry corpus", zap.Error(err))
	}
	return engine
}
