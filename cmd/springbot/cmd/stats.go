package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"springbot/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print trade journal statistics",
	Long: `Stats summarizes the trade journal: totals, win rate, P/L and
profit factor.

Example:
  springbot stats -f config.yaml`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	jnl, err := buildJournal(cfg)
	if err != nil {
		return err
	}
	defer jnl.Close()

	s, err := jnl.Summary()
	if err != nil {
		return fmt.Errorf("summarize journal: %w", err)
	}

	fmt.Printf("Trades:        %d (%d open, %d closed)\n", s.Total, s.Open, s.Closed)
	if s.Closed == 0 {
		return nil
	}
	fmt.Printf("Wins/Losses:   %d / %d (win rate %.1f%%)\n", s.Wins, s.Losses, s.WinRate)
	fmt.Printf("Total P/L:     %.2f\n", s.TotalPnL)
	fmt.Printf("Avg win:       %.2f\n", s.AvgWin)
	fmt.Printf("Avg loss:      %.2f\n", s.AvgLoss)
	if s.ProfitFactor > 0 {
		fmt.Printf("Profit factor: %.2f\n", s.ProfitFactor)
	}
	return nil
}
