package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	// BetsPlacedTotal counts accepted bets by structure
	BetsPlacedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubbet_bets_placed_total",
		Help: "Number of bets placed, by structure",
	}, []string{"structure"})

	// BetsSettledTotal counts settled bets by outcome
	BetsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubbet_bets_settled_total",
		Help: "Number of bets settled, by final status",
	}, []string{"status"})

	// StakeAmountTotal accumulates the total points staked
	StakeAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubbet_stake_amount_total",
		Help: "Total amount of points staked",
	})
)

// StartMetricsServer exposes /metrics and /healthz on the given port in a
// background goroutine
func StartMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	go func() {
		log.WithField("port", port).Info("Starting metrics server")
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.WithError(err).Error("Metrics server stopped")
		}
	}()
}
