package trace

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceID(t *testing.T) {
	id := NewTraceID(HTTPPrefix)
	assert.True(t, strings.HasPrefix(string(id), "http_bernoulli_"), "got %s", id)
	assert.NotEqual(t, id, NewTraceID(HTTPPrefix))
}

func TestContextRoundTrip(t *testing.T) {
	id := NewTraceID(CLIPrefix)
	ctx := NewContext(context.Background(), id)

	require.NotNil(t, FromContext(ctx))
	assert.Equal(t, id, GetTraceID(ctx))
}

func TestMissingLogger(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	assert.Equal(t, TraceID(""), GetTraceID(ctx))

	// Logging without a logger is a no-op.
	Info(ctx, "ignored %d", 1)
	Warn(ctx, "ignored")
	Error(ctx, "ignored")
	Debug(ctx, "ignored")
}
