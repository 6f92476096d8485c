package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitrelay/internal/relay/tracer"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, "relay.request", tracer.Attr("endpoint", "/foods/units.json"))

	// Context should be returned unchanged
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	// Span methods should not panic
	span.SetAttributes(tracer.Attr("cache_status", "HIT"))
	span.AddEvent("cache.lookup", tracer.Attr("scope", "global"))
	span.End(nil)
}

func TestNoopTracer_SpanEndWithError(t *testing.T) {
	tr := tracer.NewNoop()

	_, span := tr.Start(context.Background(), "relay.request")
	require.NotNil(t, span)

	span.End(errors.New("upstream unreachable"))
}

func TestAttr(t *testing.T) {
	attr := tracer.Attr("method", "GET")
	assert.Equal(t, "method", attr.Key)
	assert.Equal(t, "GET", attr.Value)
}
