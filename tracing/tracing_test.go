package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "span_test.txt")
	require.NoError(t, Init("evalrt", "0.0.1", fname))

	ctx, span := StartSpan(context.Background(), "test", KindInternal)
	span.WithAttributes(map[string]string{"k": "v"})
	_, child := StartSpan(ctx, "child", KindProducer)
	EndSpan(child, errors.New("failed"))
	EndSpan(span, nil)

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, string(data), "parent.span_id")
}

func TestNilSpan(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"k": "v"}))
	span.SetStatus(nil)
	span.SetStatusFromHTTPCode(500)
	span.End()
	EndSpan(nil, nil)
	ctx := context.Background()
	assert.Equal(t, ctx, WithSpan(ctx, nil))
	_, ok := SpanFromContext(ctx)
	assert.False(t, ok)
}
