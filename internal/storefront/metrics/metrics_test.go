package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/storefront/metrics"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("storefront", reg)
	require.NotNil(t, m)

	m.RecordFetch("getCategories", 10*time.Millisecond, nil)
	m.RecordFetch("getCategories", 10*time.Millisecond, errors.New("boom"))
	m.RecordRefresh(metrics.OutcomeShared)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	count, err := testutil.GatherAndCount(reg, "storefront_cache_query_fetches_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New("storefront", reg)

	m.RecordInvalidation("Category")
	m.RecordInvalidation("Category")
	m.RecordRefetch("getStatistics")
	m.RecordEviction()
	m.SetEntries(3)
	m.RecordBranch("description", nil)
	m.RecordAICall("chat", time.Second)
	m.RecordMutation("deleteCategory", nil)
	m.RecordDedup("getCategories")

	count, err := testutil.GatherAndCount(reg, "storefront_cache_invalidations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = testutil.GatherAndCount(reg, "storefront_cache_evictions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = testutil.GatherAndCount(reg, "storefront_ai_branches_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.RecordFetch("q", time.Millisecond, nil)
		m.RecordDedup("q")
		m.RecordMutation("m", nil)
		m.RecordInvalidation("Cart")
		m.RecordRefetch("q")
		m.RecordEviction()
		m.SetEntries(1)
		m.RecordRefresh(metrics.OutcomeSuccess)
		m.RecordBranch("price", errors.New("x"))
		m.RecordAICall("image", time.Second)
	})
}
