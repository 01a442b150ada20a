// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

/*
Package metrics provides Prometheus metrics for the gate and the engine behind it.

All collectors register with the default registry through promauto and are
served by promhttp at the configured metrics path (default /metrics).

# Available Metrics

HTTP:
  - searchgate_http_requests_total{method,route,status_code}
  - searchgate_http_request_duration_seconds{method,route}
  - searchgate_http_active_requests

Guard:
  - searchgate_guard_decisions_total{category,verdict}
  - searchgate_guard_denials_total{category,status}
  - searchgate_engine_request_duration_seconds

Engine:
  - searchgate_cores_loaded
  - searchgate_core_init_failures
  - searchgate_bootstrap_fallbacks_total
  - searchgate_documents_indexed_total{core}
  - searchgate_documents_skipped_total{core}
  - searchgate_search_queries_total{core,status}

Identity:
  - searchgate_auth_login_attempts_total{result}
  - searchgate_sessions_expired_total
*/
package metrics
