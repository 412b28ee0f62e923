// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Builder operations
const (
	OpAvailable  = "available"
	OpCanSelect  = "can_select"
	OpExplain    = "explain"
	OpValidate   = "validate"
	OpListBoons  = "list_boons"
	OpLiveUpdate = "live_update"
)

// Results
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
)

var (
	// builderRequests counts engine calls by operation and result
	builderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hades_builder_requests_total",
		Help: "Total boon engine requests by operation and result",
	}, []string{"operation", "result"})

	// resolveDuration tracks engine latency
	resolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hades_builder_resolve_duration_seconds",
		Help:    "Boon engine call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10us to ~160ms
	}, []string{"operation"})

	// buildsRejected counts builds refused by the validator on save
	buildsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hades_builds_rejected_total",
		Help: "Total builds rejected because their selection failed validation",
	})

	// wsClients is the number of connected live editor clients
	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hades_ws_clients",
		Help: "Connected live build editor clients",
	})

	// catalogBoons is the size of the loaded catalog
	catalogBoons = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hades_catalog_boons",
		Help: "Number of boons in the loaded catalog",
	})
)

// ObserveBuilder records one engine call that started at start
func ObserveBuilder(operation, result string, start time.Time) {
	builderRequests.WithLabelValues(operation, result).Inc()
	resolveDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func BuildRejected() {
	buildsRejected.Inc()
}

func ClientConnected() {
	wsClients.Inc()
}

func ClientDisconnected() {
	wsClients.Dec()
}

func SetCatalogSize(boons int) {
	catalogBoons.Set(float64(boons))
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
