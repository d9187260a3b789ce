package metrics

import (
	"testing"
	"time"

	"github.com/go-authgate/dbrealm/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledReturnsNoop(t *testing.T) {
	recorder := Init(false)
	_, ok := recorder.(*NoopMetrics)
	assert.True(t, ok)

	// Noop calls must not panic.
	recorder.RecordLookup(core.LookupResultOK, time.Millisecond)
	recorder.RecordCacheResult(true)
	recorder.RecordQueryError("principal_lookup")
}

func TestInitEnabledIsSingleton(t *testing.T) {
	first := Init(true)
	second := Init(true)
	require.Same(t, first, second)

	// Recording with registered collectors must not panic.
	first.RecordLookup(core.LookupResultUserNotFound, time.Millisecond)
	first.RecordCacheResult(false)
	first.RecordQueryError("principal_lookup")
}
