package core

import "time"

// Lookup result labels recorded by implementations of Recorder.
const (
	LookupResultOK           = "ok"
	LookupResultUserNotFound = "user_not_found"
	LookupResultNoAuthority  = "no_authority"
	LookupResultError        = "error"
)

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// RecordLookup records one principal resolution with its outcome
	// label and duration.
	RecordLookup(result string, duration time.Duration)

	// RecordCacheResult records a principal-cache hit or miss.
	RecordCacheResult(hit bool)

	// RecordQueryError records a store query failure by query kind.
	RecordQueryError(query string)
}
