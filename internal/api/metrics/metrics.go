// Package metrics defines and registers the custom Prometheus metrics of the
// records API. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default registry on package load through
// promauto; request-level metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "records"

// ── Record metrics ────────────────────────────────────────────────────────────

// RecordsCreatedTotal counts records created through the API.
// Label:
//   - resource: "user", "employee", "client", "project", "document", "contract", "milestone"
var RecordsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of records created, by resource.",
	},
	[]string{"resource"},
)

// RecordsDeletedTotal counts deleted and archived records.
var RecordsDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deleted_total",
		Help:      "Total number of records deleted or archived, by resource.",
	},
	[]string{"resource"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Upload and export metrics ─────────────────────────────────────────────────

// UploadSizeBytes observes the size of accepted uploads.
var UploadSizeBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_size_bytes",
		Help:      "Size of accepted document uploads.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB .. 16MiB
	},
)

// ReportsGeneratedTotal counts rendered exports.
// Labels:
//   - report: "employees", "clients", "projects", "documents"
//   - format: "xlsx" or "pdf"
var ReportsGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_generated_total",
		Help:      "Total number of generated report files.",
	},
	[]string{"report", "format"},
)
