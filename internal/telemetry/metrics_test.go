package telemetry_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/telemetry"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	metrics.RecordRequest("GET", "success", 1, 20*time.Millisecond)
	metrics.RecordRequest("GET", luna.CodeServerInternal, 4, time.Second)
	metrics.RecordRetry(luna.CodeServerInternal)
	metrics.RecordRetry(luna.CodeServerInternal)

	count, err := testutil.GatherAndCount(registry, "luna_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)

	var nilMetrics *telemetry.Metrics

	assert.NotPanics(t, func() {
		nilMetrics.RecordRequest("GET", "success", 1, time.Millisecond)
		nilMetrics.RecordRetry("x")
	})
}
