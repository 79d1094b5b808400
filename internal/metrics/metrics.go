// Package metrics exposes the Prometheus instrumentation and the sidecar
// HTTP server serving /metrics and /healthz.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BetsPlaced counts accepted placements by bet type and currency.
	BetsPlaced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_bets_placed_total",
		Help: "Bets accepted by the ledger",
	}, []string{"type", "currency"})

	// BetsSettled counts settlements by outcome.
	BetsSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_bets_settled_total",
		Help: "Bets settled by outcome",
	}, []string{"outcome"})

	// LedgerErrors counts failed ledger audit writes.
	LedgerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_ledger_errors_total",
		Help: "Ledger audit row write failures",
	})

	// OddsFeedFetches counts odds feed refreshes by result.
	OddsFeedFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_odds_feed_fetches_total",
		Help: "Odds feed fetches by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(BetsPlaced, BetsSettled, LedgerErrors, OddsFeedFetches)
}

// HealthFunc reports dependency health for the /healthz endpoint.
type HealthFunc func(ctx context.Context) error

// StartServer brings up a lightweight HTTP server for /metrics and /healthz
// on its own port, detached from the API routers. Runs in a goroutine; the
// returned server is shut down by the caller.
func StartServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
