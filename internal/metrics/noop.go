package metrics

import (
	"time"

	"github.com/go-authgate/dbrealm/internal/core"
)

// Ensure NoopMetrics implements Recorder interface at compile time
var _ core.Recorder = (*NoopMetrics)(nil)

// NoopMetrics is a no-op Recorder used when metrics are disabled.
type NoopMetrics struct{}

// NewNoopMetrics creates a new no-op metrics recorder.
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordLookup(result string, duration time.Duration) {}

func (n *NoopMetrics) RecordCacheResult(hit bool) {}

func (n *NoopMetrics) RecordQueryError(query string) {}
