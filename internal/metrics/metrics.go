package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SnapshotRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offers_snapshot_refresh_total",
			Help: "Total number of snapshot refresh attempts by result",
		},
		[]string{"result"},
	)

	SnapshotRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "offers_snapshot_refresh_duration_seconds",
			Help: "Duration of snapshot refreshes in seconds",
		},
	)

	SnapshotOffers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "offers_snapshot_offers",
			Help: "Number of offers in the current snapshot",
		},
	)

	FetchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offers_fetch_requests_total",
			Help: "Total number of /fetch requests by status code",
		},
		[]string{"status"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "offers_fetch_duration_seconds",
			Help: "Duration of /fetch request handling in seconds",
		},
	)
)
