// Package metrics exposes the service's Prometheus counters. Everything is
// registered on the default registry and served from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passportdesk_uploaded_bytes_total",
		Help: "Total bytes of applicant documents written to the object store.",
	})

	CredentialRefreshCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passportdesk_credential_refresh_cycles_total",
		Help: "Completed scheduled credential refresh cycles.",
	})

	CredentialErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passportdesk_credential_errors_total",
		Help: "Slot credentials that could not be issued (malformed pointer or store failure).",
	})

	AuditAppendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passportdesk_audit_append_failures_total",
		Help: "Audit records that failed to persist and were swallowed at the call site.",
	})
)
