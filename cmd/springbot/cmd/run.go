package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"springbot/bot"
	"springbot/bybit"
	"springbot/config"
	"springbot/exchange"
	"springbot/journal"
	"springbot/metrics"
	"springbot/notify"
	"springbot/orders"
	"springbot/paper"
	"springbot/positions"
	"springbot/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop",
	Long: `Run the trading loop until interrupted.

Credentials come from the environment (or a .env file):
  BYBIT_API_KEY, BYBIT_API_SECRET
  TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID (optional)

Example:
  springbot run -f config.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := newLogger()

	gw, err := buildGateway(cfg, log)
	if err != nil {
		return err
	}
	jnl, err := buildJournal(cfg)
	if err != nil {
		return err
	}
	defer jnl.Close()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Credentials.TelegramToken != "" && cfg.Credentials.TelegramChatID != "" {
		notifier = notify.NewTelegram(cfg.Credentials.TelegramToken, cfg.Credentials.TelegramChatID, log)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	ledger := positions.NewLedger(gw, log, cfg.PendingTTL.Std())
	engine := strategy.NewEngine(cfg.Strategy)
	entry := orders.NewController(gw, ledger, cfg.Risk, jnl, notifier, log)
	runner := bot.NewRunner(gw, engine, ledger, entry, jnl, notifier, log, bot.Options{
		Symbols:    cfg.Symbols,
		Interval:   cfg.Interval,
		KlineLimit: cfg.KlineLimit,
		Cadence:    cfg.Cadence.Std(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildGateway picks the trading surface: simulated fills over live
// market data in paper mode, the real venue otherwise.
func buildGateway(cfg config.Config, log zerolog.Logger) (exchange.Gateway, error) {
	venue := bybit.NewClient(cfg.Credentials.BybitKey, cfg.Credentials.BybitSecret, cfg.Testnet)
	if cfg.Paper {
		log.Info().Float64("balance", cfg.PaperBalance).Msg("paper mode, simulated fills")
		return paper.NewGateway(venue, log, cfg.Interval, cfg.PaperBalance), nil
	}
	if cfg.Testnet {
		log.Info().Msg("testnet mode")
	}
	return venue, nil
}

func buildJournal(cfg config.Config) (journal.Journal, error) {
	if cfg.Journal == "sqlite" {
		return journal.NewSQLite(cfg.JournalPath)
	}
	return journal.NewCSV(cfg.JournalPath)
}
