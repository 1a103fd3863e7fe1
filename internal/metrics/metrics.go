package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счетчики бизнес-событий. Регистрируются в дефолтном реестре,
// отдаются через /metrics
var (
	PurchasesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presale_purchases_created_total",
		Help: "Created purchase records (pending).",
	})

	PurchasesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presale_purchases_resolved_total",
		Help: "Resolved purchase records by decision.",
	}, []string{"decision"})

	PriceFeedErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presale_price_feed_errors_total",
		Help: "Failed price feed refresh attempts.",
	})

	PriceFeedRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presale_price_feed_refreshes_total",
		Help: "Successful price feed refreshes.",
	})

	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "presale_ws_clients",
		Help: "Connected price stream clients.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presale_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "presale_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)
