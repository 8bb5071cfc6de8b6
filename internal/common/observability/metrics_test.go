package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRecordToolCall_ExportsToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := New("product-recommendation-server", reg)
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	obs.RecordToolCall(context.Background(), "gpt_recommend", "success", 120*time.Millisecond)
	obs.RecordToolCall(context.Background(), "health", "success", time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "tool_calls")
	assert.Contains(t, joined, "tool_duration")
}

func TestStartSpan_RecordsNestedSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs, err := New("product-recommendation-server", promclient.NewRegistry(), recorder)
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	ctx, parent := obs.StartSpan(context.Background(), "recommend.execute", attribute.Int("limit", 3))
	_, child := obs.StartSpan(ctx, "llm.complete")
	child.End()
	parent.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "llm.complete", ended[0].Name())
	assert.Equal(t, "recommend.execute", ended[1].Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
}

func TestNewNoop(t *testing.T) {
	obs := NewNoop()

	ctx, span := obs.StartSpan(context.Background(), "catalog.load")
	obs.RecordToolCall(ctx, "health", "success", time.Millisecond)
	span.End()

	assert.NoError(t, obs.Shutdown(context.Background()))
}
