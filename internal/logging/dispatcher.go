package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// CommandLogger writes dispatcher events through zerolog, tagged with
// component=dispatcher. It satisfies dispatcher.Logger.
type CommandLogger struct {
	logger zerolog.Logger
}

// NewCommandLogger wraps logger for use by the command dispatcher.
func NewCommandLogger(logger zerolog.Logger) *CommandLogger {
	return &CommandLogger{logger: logger.With().Str("component", "dispatcher").Logger()}
}

func (l *CommandLogger) Debug(msg string, keysAndValues ...any) {
	withPairs(l.logger.Debug(), keysAndValues).Msg(msg)
}

func (l *CommandLogger) Info(msg string, keysAndValues ...any) {
	withPairs(l.logger.Info(), keysAndValues).Msg(msg)
}

func (l *CommandLogger) Error(msg string, keysAndValues ...any) {
	withPairs(l.logger.Error(), keysAndValues).Msg(msg)
}

// withPairs adds alternating key/value arguments to ev. Non-string keys and
// a trailing key without a value are dropped.
func withPairs(ev *zerolog.Event, keysAndValues []any) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		switch v := keysAndValues[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case []string:
			ev = ev.Strs(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	return ev
}
