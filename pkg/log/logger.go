package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

const diodeSize = 1000

// NewContextWithLogger installs the process logger and returns a context
// carrying it plus a flush func. TUSK_LOG_FORMAT=json switches from the
// console writer to JSON lines.
func NewContextWithLogger(ctx context.Context, debug bool) (context.Context, func()) {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return ""
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	// non-blocking: drops messages instead of stalling request handlers
	wr := diode.NewWriter(os.Stdout, diodeSize, 5*time.Millisecond, func(missed int) {
		fmt.Fprintf(os.Stderr, "logger dropped %d messages\n", missed)
	})

	logger := zerolog.New(newOutput(wr, os.Getenv("TUSK_LOG_FORMAT"))).
		With().
		Timestamp().
		Str("app", "tuskdash").
		Logger()

	log.Logger = logger

	return logger.WithContext(ctx), func() {
		_ = wr.Close()
	}
}

func newOutput(w io.Writer, format string) io.Writer {
	if format == "json" {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.LevelFieldName,
			zerolog.TimestampFieldName,
			"component",
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{"app", "component"},
	}
}

// FromCtx returns the context logger, or a disabled one when none is set.
func FromCtx(ctx context.Context) *zerolog.Logger {
	return log.Ctx(ctx)
}

// WithComponent returns a child context whose logger carries a component field.
func WithComponent(ctx context.Context, component string) context.Context {
	logger := FromCtx(ctx).With().Str("component", component).Logger()
	return logger.WithContext(ctx)
}
