package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (o Outcome) String() string {
	return string(o)
}

var (
	once                     sync.Once
	metricsRouter            *chi.Mux
	dbLatency                *prometheus.HistogramVec
	tokenClientLatency       *prometheus.HistogramVec
	poolOperationsCounter    *prometheus.CounterVec
	transferOutcomesCounter  *prometheus.CounterVec
	queueReceiveErrorCounter prometheus.Counter
	pendingTransfersGauge    prometheus.Gauge
	totalStakedGauge         prometheus.Gauge
	vaultStakedSumGauge      prometheus.Gauge
	accountsRegisteredGauge  prometheus.Gauge
	vaultCountGauge          prometheus.Gauge
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	go func() {
		log.Info().Msgf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "Histogram of database operation durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	tokenClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "token_client_latency_seconds",
			Help:    "Histogram of token service client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	poolOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_operations_total",
			Help: "Total pool operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	transferOutcomesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_outcomes_total",
			Help: "Resolved outbound transfers by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	queueReceiveErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_receive_error_total",
			Help: "Total number of malformed or unprocessable outcome notifications.",
		},
	)

	pendingTransfersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_transfers",
			Help: "Number of dispatched transfers awaiting their outcome.",
		},
	)

	totalStakedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_total_staked",
			Help: "Ledger total staked amount.",
		},
	)

	vaultStakedSumGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_vault_staked_sum",
			Help: "Sum of staked amounts across all vaults.",
		},
	)

	accountsRegisteredGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_accounts_registered",
			Help: "Ledger registered-accounts counter.",
		},
	)

	vaultCountGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_vault_count",
			Help: "Number of vault records in the store.",
		},
	)

	prometheus.MustRegister(
		dbLatency,
		tokenClientLatency,
		poolOperationsCounter,
		transferOutcomesCounter,
		queueReceiveErrorCounter,
		pendingTransfersGauge,
		totalStakedGauge,
		vaultStakedSumGauge,
		accountsRegisteredGauge,
		vaultCountGauge,
	)
}

func ObserveDbLatency(method string, duration time.Duration, failure bool) {
	status := Success
	if failure {
		status = Error
	}
	dbLatency.WithLabelValues(method, status.String()).Observe(duration.Seconds())
}

func ObserveTokenClientLatency(method string, duration time.Duration, failure bool) {
	status := Success
	if failure {
		status = Error
	}
	tokenClientLatency.WithLabelValues(method, status.String()).Observe(duration.Seconds())
}

func RecordPoolOperation(operation string, failure bool) {
	outcome := Success
	if failure {
		outcome = Error
	}
	poolOperationsCounter.WithLabelValues(operation, outcome.String()).Inc()
}

func RecordTransferOutcome(kind string, success bool) {
	outcome := Error
	if success {
		outcome = Success
	}
	transferOutcomesCounter.WithLabelValues(kind, outcome.String()).Inc()
}

func RecordQueueReceiveError() {
	queueReceiveErrorCounter.Inc()
}

func RecordConsistencySnapshot(total, stakedSum float64, registered, vaultCount, pending uint64) {
	totalStakedGauge.Set(total)
	vaultStakedSumGauge.Set(stakedSum)
	accountsRegisteredGauge.Set(float64(registered))
	vaultCountGauge.Set(float64(vaultCount))
	pendingTransfersGauge.Set(float64(pending))
}
