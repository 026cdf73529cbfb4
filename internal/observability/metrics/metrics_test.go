package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsHighCardinalityLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("backend", "redis"),
		attribute.String("building_id", "42"),
		attribute.String("contract_id", "7"),
		attribute.String("outcome", "hit"),
	)
	require.Len(t, attrs, 2)

	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("backend"))
	assert.Contains(t, keys, attribute.Key("outcome"))
}

func TestNoopMetricsAcceptRecords(t *testing.T) {
	m := NewNoop()
	require.NotNil(t, m)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordInvoiceGenerated(ctx, "monthly")
		m.RecordInvoiceConflict(ctx)
		m.RecordSummaryComputed(ctx, "building")
		m.RecordSummaryCache(ctx, "memory", "miss")
		m.RecordCategoryDeleteDenied(ctx, "opex")
	})

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordInvoiceConflict(ctx) })
}
