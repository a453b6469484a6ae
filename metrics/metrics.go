// Package metrics exposes Prometheus counters for the trading loop.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cycles counts evaluation cycles per symbol.
	Cycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "springbot_cycles_total",
		Help: "Evaluation cycles run, per symbol.",
	}, []string{"symbol"})

	// Signals counts actionable signals by symbol and direction.
	Signals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "springbot_signals_total",
		Help: "Actionable entry signals emitted, per symbol and direction.",
	}, []string{"symbol", "direction"})

	// Orders counts accepted entry orders.
	Orders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "springbot_orders_total",
		Help: "Entry orders accepted by the venue, per symbol and direction.",
	}, []string{"symbol", "direction"})

	// OrderFailures counts rejected or failed entry attempts.
	OrderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "springbot_order_failures_total",
		Help: "Entry attempts that failed before or at the venue, per symbol.",
	}, []string{"symbol"})

	// Closures counts detected position closures by result.
	Closures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "springbot_closures_total",
		Help: "Position closures detected, per symbol and result.",
	}, []string{"symbol", "result"})
)

// Serve exposes /metrics on addr. It blocks, so callers run it in a
// goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
