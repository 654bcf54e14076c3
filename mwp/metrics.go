package mwp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("featsat.mwp")

var (
	// enumerations counts enumeration runs.
	// Labels: status (ok, error, cancelled, limit)
	enumerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "featsat",
		Subsystem: "mwp",
		Name:      "enumerations_total",
		Help:      "Total minimal product enumerations",
	}, []string{"status"})

	// enumerationDuration measures the time taken by an enumeration.
	enumerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "featsat",
		Subsystem: "mwp",
		Name:      "enumeration_duration_seconds",
		Help:      "Duration of minimal product enumerations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	})

	// oracleCalls tracks the number of models returned by the oracle per enumeration.
	oracleCalls = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "featsat",
		Subsystem: "mwp",
		Name:      "oracle_models",
		Help:      "Number of models found by the oracle per enumeration",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	// productsFound tracks the number of minimal products per enumeration.
	productsFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "featsat",
		Subsystem: "mwp",
		Name:      "products",
		Help:      "Number of minimal products per enumeration",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
)
