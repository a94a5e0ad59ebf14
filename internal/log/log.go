// Package log is the logging abstraction used across tugfm.
//
// Components depend on [Logger] only; the concrete backend (logrus) is chosen in main.
package log

import "context"

// Kv is a helper type for structured logging key-value pairs.
type Kv = map[string]any

// Logger is the interface tugfm components log through.
type Logger interface {
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
	WithValues(values Kv) Logger
	WithCtxValues(ctx context.Context) Logger
}

// Noop logger that doesn't log anything.
const Noop = noop(0)

type noop int

func (n noop) Infof(format string, args ...any)       {}
func (n noop) Warningf(format string, args ...any)    {}
func (n noop) Errorf(format string, args ...any)      {}
func (n noop) Debugf(format string, args ...any)      {}
func (n noop) WithValues(_ Kv) Logger                 { return n }
func (n noop) WithCtxValues(_ context.Context) Logger { return n }

type contextKey string

const contextLogValuesKey contextKey = "internal-log-values"

// CtxWithValues returns a copy of parent with the log values merged into the ones
// already stored on it.
func CtxWithValues(parent context.Context, kv Kv) context.Context {
	if len(kv) == 0 {
		return parent
	}
	merged := Kv{}
	for k, v := range ValuesFromCtx(parent) {
		merged[k] = v
	}
	for k, v := range kv {
		merged[k] = v
	}
	return context.WithValue(parent, contextLogValuesKey, merged)
}

// ValuesFromCtx gets the log Key values from a context.
func ValuesFromCtx(ctx context.Context) Kv {
	values, _ := ctx.Value(contextLogValuesKey).(Kv)
	return values
}
