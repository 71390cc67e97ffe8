package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "debug level", level: "debug"},
		{name: "info level", level: "info"},
		{name: "warn level", level: "warn"},
		{name: "error level", level: "error"},
		{name: "mixed case is accepted", level: "INFO"},
		{name: "unknown level is rejected", level: "verbose", wantErr: true},
		{name: "empty level is rejected", level: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := Setup(tc.level)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Same(t, slog.Default(), FromContext(ctx), "missing logger falls back to default")

	attached := slog.Default().With(slog.String("trace_id", "abc123"))
	ctx = WithLogger(ctx, attached)
	assert.Same(t, attached, FromContext(ctx))
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	fallback := slog.Default().With(slog.String("component", "test"))

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))

	attached := slog.Default().With(slog.String("trace_id", "xyz"))
	ctx := WithLogger(context.Background(), attached)
	assert.Same(t, attached, FromContextOrDefault(ctx, fallback))
}
