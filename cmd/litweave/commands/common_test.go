package commands

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAfterApply_VerboseFlag_ConfiguresDebugLogger(t *testing.T) {
	cli := CLI{Verbose: true}
	require.NoError(t, cli.AfterApply())

	// Commands receive the configured logger via Global.
	g := &Global{Logger: slog.Default()}
	require.NotNil(t, g.Logger)
	require.True(t, g.Logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLogLevel_EnvOverride(t *testing.T) {
	t.Setenv("LITWEAVE_LOG_LEVEL", "warn")
	require.Equal(t, slog.LevelWarn, parseLogLevel(false))

	t.Setenv("LITWEAVE_LOG_LEVEL", "error")
	require.Equal(t, slog.LevelError, parseLogLevel(false))

	// The verbose flag wins over the environment.
	require.Equal(t, slog.LevelDebug, parseLogLevel(true))
}
