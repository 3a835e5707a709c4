package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	require.Same(t, slog.Default(), FromContext(context.Background()))

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), l)
	require.Same(t, l, FromContext(ctx))
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		env      string
		level    string
		wantJSON bool
		wantMsg  bool
	}{
		{name: "local text", env: "local", level: "info", wantJSON: false, wantMsg: true},
		{name: "prod json", env: "prod", level: "debug", wantJSON: true, wantMsg: true},
		{name: "level filters info", env: "prod", level: "error", wantJSON: true, wantMsg: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			New(&buf, tt.env, tt.level).Info("hello", "k", "v")

			if !tt.wantMsg {
				require.Empty(t, buf.String())
				return
			}
			require.Contains(t, buf.String(), "hello")
			if tt.wantJSON {
				require.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				require.Contains(t, buf.String(), "msg=hello")
			}
		})
	}
}
