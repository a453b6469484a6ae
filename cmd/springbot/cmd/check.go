package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"springbot/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify config, credentials and venue connectivity",
	Long: `Check loads the configuration, connects to the venue and verifies
that market data and the account are reachable for every configured
symbol. Nothing is traded.

Example:
  springbot check -f config.yaml`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := newLogger()

	gw, err := buildGateway(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	balances, err := gw.GetBalances(ctx)
	if err != nil {
		return fmt.Errorf("balance check failed: %w", err)
	}
	fmt.Println("Account reachable. Balances:")
	for coin, v := range balances {
		fmt.Printf("  %-6s %.4f\n", coin, v)
	}

	for _, symbol := range cfg.Symbols {
		candles, err := gw.GetKlines(ctx, symbol, cfg.Interval, 2)
		if err != nil {
			return fmt.Errorf("market data check for %s failed: %w", symbol, err)
		}
		if len(candles) == 0 {
			return fmt.Errorf("market data check for %s: no candles returned", symbol)
		}
		last := candles[len(candles)-1]
		fmt.Printf("  %-10s last close %.6f at %s\n", symbol, last.Close, last.Start.Format(time.RFC3339))
	}

	fmt.Println("All checks passed.")
	return nil
}
