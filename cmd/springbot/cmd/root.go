package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "springbot",
	Short: "An RSI-reversal trading bot for Bybit linear perpetuals",
	Long: `Springbot trades mean-reversion setups on Bybit USDT perpetuals.

It watches candle history for oversold and overbought RSI extremes,
confirms them with volume, trend and reversal-pattern filters, and
enters risk-sized market orders with attached take-profit and
stop-loss. Positions are reconciled against the venue every cycle and
every entry and closure lands in a local trade journal.`,
}

var (
	cfgPath string
	debug   bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// newLogger builds the process logger. Debug level includes the
// per-cycle indicator traces.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
