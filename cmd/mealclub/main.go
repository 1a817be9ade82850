// Command mealclub runs the membership, meal package and poll voting API.
//
// @title        mealclub API
// @version      1.0
// @description  Membership, meal package and poll voting service.
// @BasePath     /
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ghorer-khabar/mealclub/internal/infrastructure/config"
	"github.com/ghorer-khabar/mealclub/pkg/logger"
)

const programName = "mealclub"

var globalFlags = struct {
	debug bool
}{}

// commonRun loads configuration and initialises the process logger.
func commonRun(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	level := cfg.LogLevel
	if globalFlags.debug {
		level = "debug"
	}
	log := logger.Init(logger.Options{
		Level:   level,
		Pretty:  cfg.LogPretty,
		Service: programName,
	})
	return cfg, log, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Meal club membership and poll service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveRun,
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(seedCommand())
	rootCmd.AddCommand(setupCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
