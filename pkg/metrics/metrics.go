// Package metrics documents the Prometheus metrics exposed by the fetcher.
// All metrics are defined in the packages that own them (client, pagination)
// via promauto, to maintain modularity and avoid circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the fetcher. All
// metrics register automatically via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - ram_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - ram_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - ram_errors_total{class} (Counter): Classified fetch errors
//     (network, rate_limit, server, client, malformed)
//
// Pagination Metrics (pkg/pagination):
//   - ram_pages_fetched_total{resource} (Counter): Pages fetched successfully
//   - ram_records_total{kind} (Counter): Records normalized by kind
//   - ram_retries_total{error_class} (Counter): Retry attempts by error class
//   - ram_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - ram_fetch_aborts_total{error_class} (Counter): Aborted fetch runs
//
// Example Prometheus Queries:
//
//   # Retry rate
//   rate(ram_retries_total[5m])
//
//   # Abort rate by class
//   rate(ram_fetch_aborts_total[5m])
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(ram_request_duration_seconds_bucket[5m]))
