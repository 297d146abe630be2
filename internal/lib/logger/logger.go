package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/linemk/storefront/internal/lib/logger/handlers/slogpretty"
)

// switching logger
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// SetupLogger инициализирует логгер в зависимости от окружения:
// local — цветной вывод (pretty), dev — JSON с debug, prod и всё прочее — JSON с info
func SetupLogger(env string) *slog.Logger {
	switch env {
	case EnvLocal:
		return setupPrettySlog(os.Stdout)
	case EnvDev:
		return newJSON(os.Stdout, slog.LevelDebug)
	default:
		return newJSON(os.Stdout, slog.LevelInfo)
	}
}

// Discard возвращает логгер, который ничего не пишет
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newJSON(out io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

func setupPrettySlog(out io.Writer) *slog.Logger {
	color.NoColor = false

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	return slog.New(opts.NewPrettyHandler(out))
}
