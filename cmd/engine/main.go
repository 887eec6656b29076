// engine runs rooms of animated sprites described by a YAML manifest.
//
// Usage:
//
//	engine run                 - Open a window and run the demo rooms
//	engine run --headless      - Run without a window (CI, tracing)
//	engine config <file>       - Show the effective settings of a config file
//
// Global flags:
//
//	--log-level <level>  - debug, info, warn or error (default: info)
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var flagLogLevel string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Room Shell - animated sprites and safe room transitions",
	Long: `Room Shell runs rooms of sprites whose frames animate on their own
goroutines while the render loop draws whatever frame is current.

Examples:
  engine run
  engine run --config ./game.cfg --watch
  engine run --headless --ticks 600 --trace trace.json
  engine config ./game.cfg`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(flagLogLevel)
		if err != nil {
			return err
		}
		log.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
}

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "roomshell",
		Level:           lvl,
	}), nil
}
