// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pemkeys.
//
// go-pemkeys is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics exposes Prometheus instrumentation for key and cipher
// operations. Collectors register on the default registry; embedding
// applications expose them through their own /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pemkeys"

// Operation result labels.
const (
	StatusOK          = "ok"
	StatusMiss        = "miss"
	StatusError       = "error"
	StatusUnavailable = "unavailable"
)

var (
	operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Key and cipher operations by operation name and status.",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of key and cipher operations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	keypairsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keypairs_generated_total",
			Help:      "Key pairs generated and persisted.",
		},
	)
)

// RecordOperation counts one completed operation.
func RecordOperation(operation, status string) {
	operations.WithLabelValues(operation, status).Inc()
}

// ObserveDuration records the latency of an operation started at the
// given time.
func ObserveDuration(operation string, started time.Time) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// RecordKeygen counts one persisted key pair.
func RecordKeygen() {
	keypairsGenerated.Inc()
}
