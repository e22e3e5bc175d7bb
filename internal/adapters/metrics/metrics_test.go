package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalRecorders_NoopWhenDisabled(t *testing.T) {
	Reset()

	assert.False(t, IsEnabled())
	assert.NotPanics(t, func() {
		RecordOrderTransition("RESEARCH", "COMMISSIONED", "ORDERED")
		RecordAdmissionBlocked("RESEARCH", "UNAFFORDABLE")
		RecordOrderCompleted("RESEARCH", 100)
		SetQueueDepth("COMMISSIONED", 3)
		RecordJobEvent("created")
		SetWorkerPool(4, 1)
	})
}

func TestProductionCollector_RecordsThroughGlobals(t *testing.T) {
	Reset()
	InitRegistry()
	defer Reset()

	collector := NewProductionMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalProductionCollector(collector)

	RecordOrderTransition("PRODUCE_UNIT", "COMMISSIONED", "ORDERED")
	RecordOrderTransition("PRODUCE_UNIT", "COMMISSIONED", "ORDERED")
	SetQueueDepth("COMMISSIONED", 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.transitionsTotal.WithLabelValues("PRODUCE_UNIT", "COMMISSIONED", "ORDERED")))
	assert.Equal(t, 5.0, testutil.ToFloat64(collector.queueDepth.WithLabelValues("COMMISSIONED")))
}

func TestConstructionCollector_PoolGauges(t *testing.T) {
	Reset()
	InitRegistry()
	defer Reset()

	collector := NewConstructionMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalConstructionCollector(collector)

	SetWorkerPool(6, 2)
	RecordJobEvent("reassigned")

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.builderPoolSize.WithLabelValues("reserved")))
	assert.Equal(t, 4.0, testutil.ToFloat64(collector.builderPoolSize.WithLabelValues("spare")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.jobEventsTotal.WithLabelValues("reassigned")))
}

func TestCommandCollector_ThrottledCommandsAreCountedNotTimed(t *testing.T) {
	Reset()
	InitRegistry()
	defer Reset()

	collector := NewCommandMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalCommandCollector(collector)

	RecordWorldCommand("train", CommandAccepted, 0.0001)
	RecordWorldCommand("train", CommandThrottled, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("train", CommandAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("train", CommandThrottled)))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.commandDuration))
}
