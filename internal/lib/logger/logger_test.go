package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/linemk/storefront/internal/lib/logger"
	"github.com/linemk/storefront/internal/lib/logger/handlers/slogpretty"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	ctx := context.Background()

	local := logger.SetupLogger(logger.EnvLocal)
	_, pretty := local.Handler().(*slogpretty.PrettyHandler)
	assert.True(t, pretty, "local env should use pretty handler")

	dev := logger.SetupLogger(logger.EnvDev)
	assert.True(t, dev.Enabled(ctx, slog.LevelDebug), "dev env should log debug")

	prod := logger.SetupLogger(logger.EnvProd)
	assert.False(t, prod.Enabled(ctx, slog.LevelDebug), "prod env should not log debug")
	assert.True(t, prod.Enabled(ctx, slog.LevelInfo))

	unknown := logger.SetupLogger("staging")
	assert.False(t, unknown.Enabled(ctx, slog.LevelDebug))
}
