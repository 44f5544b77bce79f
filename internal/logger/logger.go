// Package logger provides structured logging using zerolog.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const turnIDKey contextKey = "turn_id"

const milliTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Options selects the level and optional file sink of the global logger.
type Options struct {
	Level   string
	File    string
	Dev     bool
	Console io.Writer
}

// Init initializes the global logger. Console output goes to stderr unless
// opts.Console is set, so stdout stays free for adjudication results.
func Init(opts Options) {
	zerolog.TimeFieldFormat = milliTimeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	const callerWidth = 30
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		path := fmt.Sprintf("%s:%d", filepath.Base(file), line)
		if len(path) >= callerWidth {
			return path[len(path)-callerWidth:]
		}
		return path + strings.Repeat(" ", callerWidth-len(path))
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var output io.Writer = zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: milliTimeFormat,
		NoColor:    !opts.Dev,
	}

	if opts.File != "" {
		f, ferr := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if ferr == nil {
			output = io.MultiWriter(output, f)
		}
	}

	log.Logger = log.Output(output).With().Caller().Logger()

	log.Debug().
		Str("level", level.String()).
		Bool("dev", opts.Dev).
		Msg("Logger initialized")
}

// Get returns the global logger instance.
func Get() zerolog.Logger {
	return log.Logger
}

// NewTurnID returns a fresh identifier used to correlate the log lines of
// one adjudicated phase.
func NewTurnID() string {
	return uuid.NewString()
}

// WithTurnID returns a new context with the given turn ID stored.
func WithTurnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, turnIDKey, id)
}

// TurnIDFromContext extracts the turn ID from context, or empty string.
func TurnIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(turnIDKey).(string)
	return id
}

// ForTurn returns a logger enriched with the turn ID from context.
func ForTurn(ctx context.Context) zerolog.Logger {
	id := TurnIDFromContext(ctx)
	if id == "" {
		return log.Logger
	}
	return log.Logger.With().Str("turnId", id).Logger()
}

// LogOrders logs submitted order lines at debug level, truncating long lists.
func LogOrders(logger zerolog.Logger, player string, lines []string) {
	if len(lines) == 0 {
		return
	}
	const limit = 40
	if len(lines) > limit {
		logger.Debug().Str("player", player).Strs("orders", lines[:limit]).Bool("truncated", true).Msg("Orders")
		return
	}
	logger.Debug().Str("player", player).Strs("orders", lines).Msg("Orders")
}
